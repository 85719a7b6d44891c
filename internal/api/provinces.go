package api

import (
	"context"
)

const provincesPath = "/api/provinces"

// List retrieves all provinces.
func (s ProvincesService) List(ctx context.Context) ([]Province, error) {
	return listAll[Province](ctx, s, provincesPath, nil)
}

// Wards retrieves the wards of a province.
func (s ProvincesService) Wards(ctx context.Context, provinceCode string) ([]Ward, error) {
	return listAll[Ward](ctx, s, resourcePath(provincesPath, provinceCode)+"/wards", nil)
}
