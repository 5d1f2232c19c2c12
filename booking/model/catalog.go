package model

import (
	"strings"
	"time"
)

type CatalogKind string

const (
	CatalogDining   CatalogKind = "dining"
	CatalogServices CatalogKind = "services"
)

// CatalogItem is a dining option or an extra service offered with a stay.
// Duration is only set for services.
type CatalogItem struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Details     string   `json:"details"`
	Included    []string `json:"included"`
	Duration    string   `json:"duration,omitempty"`
	Available   bool     `json:"available"`
}

func (c *CatalogItem) GetId() string {
	return c.Id
}

func (c *CatalogItem) GetQueryableAttributes() map[string]string {
	return nil
}

type UserProfile struct {
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Birthdate string    `json:"birthdate"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *UserProfile) GetId() string {
	return u.Email
}

func (u *UserProfile) GetQueryableAttributes() map[string]string {
	return nil
}

// EmailSubscription is an email endpoint on a notification topic. Until the
// recipient confirms it, SNS reports a placeholder instead of an arn.
type EmailSubscription struct {
	TopicArn        string
	Email           string
	SubscriptionArn string
}

func (s EmailSubscription) IsPending() bool {
	return !strings.HasPrefix(s.SubscriptionArn, "arn:")
}
