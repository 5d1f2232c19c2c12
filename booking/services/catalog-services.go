package services

import (
	"context"
	"sort"
	"strings"

	"dogotel/booking/model"
	"dogotel/errs"
)

// CatalogService serves the public dining and services catalogs.
type CatalogService struct {
	catalogs map[model.CatalogKind]model.CatalogDao
}

func NewCatalogService(dining model.CatalogDao, services model.CatalogDao) *CatalogService {
	return &CatalogService{catalogs: map[model.CatalogKind]model.CatalogDao{
		model.CatalogDining:   dining,
		model.CatalogServices: services,
	}}
}

func (cs *CatalogService) ListCatalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogItem, error) {
	dao, err := cs.catalog(kind)
	if err != nil {
		return nil, err
	}
	items, err := dao.ScanCatalog(ctx)
	if err != nil {
		return nil, errs.Internal(err, "failed to load "+string(kind)+" catalog")
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	return items, nil
}

func (cs *CatalogService) GetCatalogItem(ctx context.Context, kind model.CatalogKind, id string) (model.CatalogItem, error) {
	if strings.TrimSpace(id) == "" {
		return model.CatalogItem{}, errs.InvalidInput("%s id is required", kind)
	}
	dao, err := cs.catalog(kind)
	if err != nil {
		return model.CatalogItem{}, err
	}
	item, err := dao.GetCatalogItem(ctx, id)
	if err != nil {
		return model.CatalogItem{}, lookupError(err, catalogResource(kind))
	}
	return item, nil
}

func (cs *CatalogService) catalog(kind model.CatalogKind) (model.CatalogDao, error) {
	dao, ok := cs.catalogs[kind]
	if !ok {
		return nil, errs.InvalidInput("unknown catalog %q", kind)
	}
	return dao, nil
}

func catalogResource(kind model.CatalogKind) string {
	if kind == model.CatalogDining {
		return "dining option"
	}
	return "service"
}
