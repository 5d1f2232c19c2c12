package lambdautils

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"dogotel/booking/model"
	"dogotel/errs"
)

type errorBody struct {
	Error string    `json:"error"`
	Kind  errs.Kind `json:"kind"`
}

// RequesterFromRequest reads the identity placed in the request context by the
// Cognito authorizer. Requests without an email claim yield an anonymous
// requester.
func RequesterFromRequest(request events.APIGatewayProxyRequest) model.Requester {
	claims, ok := request.RequestContext.Authorizer["claims"].(map[string]any)
	if !ok {
		return model.Requester{}
	}
	claim := func(name string) string {
		value, _ := claims[name].(string)
		return value
	}

	requester := model.Requester{
		Email: claim("email"),
		Name:  claim("name"),
		Role:  model.RoleUser,
	}
	if strings.EqualFold(claim("custom:role"), string(model.RoleAdmin)) {
		requester.Role = model.RoleAdmin
	}
	if requester.Name == "" {
		requester.Name = claim("cognito:username")
	}
	return requester
}

// DecodeBody unmarshals the JSON body into target. Unknown fields are ignored.
func DecodeBody(request events.APIGatewayProxyRequest, target any) error {
	if strings.TrimSpace(request.Body) == "" {
		return errs.InvalidInput("request body is required")
	}
	if err := json.Unmarshal([]byte(request.Body), target); err != nil {
		return errs.InvalidInput("invalid JSON in request body")
	}
	return nil
}

// DecodeUserBody resolves the requester before decoding the body, so anonymous
// callers get 401 whatever they sent.
func DecodeUserBody(request events.APIGatewayProxyRequest, target any) (model.Requester, error) {
	requester := RequesterFromRequest(request)
	if !requester.IsAuthenticated() {
		return requester, errs.Unauthorized()
	}
	return requester, DecodeBody(request, target)
}

// DecodeAdminBody is DecodeUserBody for admin routes: non-admins get 403
// before the body is looked at.
func DecodeAdminBody(request events.APIGatewayProxyRequest, target any) (model.Requester, error) {
	requester := RequesterFromRequest(request)
	if !requester.IsAuthenticated() {
		return requester, errs.Unauthorized()
	}
	if !requester.IsAdmin() {
		return requester, errs.Forbidden("admin access required")
	}
	return requester, DecodeBody(request, target)
}

func Respond(statusCode int, payload any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return RespondError(errs.Internal(err, "failed to encode response"))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

// RespondError maps err to its status code. Internal failures are logged with
// their cause and answered with a generic message.
func RespondError(err error) (events.APIGatewayProxyResponse, error) {
	kind := errs.KindOf(err)
	statusCode := errs.StatusCode(kind)
	if statusCode >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	} else {
		slog.Info("request rejected", "kind", kind, "error", err.Error())
	}

	body, _ := json.Marshal(errorBody{Error: errs.PublicMessage(err), Kind: kind})
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

// Handle runs op and encodes its result with successCode.
func Handle[T any](successCode int, op func() (T, error)) (events.APIGatewayProxyResponse, error) {
	result, err := op()
	if err != nil {
		return RespondError(err)
	}
	return Respond(successCode, result)
}
