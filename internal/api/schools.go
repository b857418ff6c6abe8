package api

import (
	"context"
	"strconv"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
)

// SearchSchools runs GET /schools/search with the filters passed through.
func (c *Client) SearchSchools(ctx context.Context, f models.SchoolFilters) (models.Page[models.SchoolView], error) {
	var page models.Page[models.SchoolPayload]
	if err := c.getJSON(ctx, "school_search", "/schools/search", f.Values(), &page); err != nil {
		return models.Page[models.SchoolView]{}, fetchError("search schools", err)
	}
	return models.MapPage(page, models.SchoolPayload.Normalize), nil
}

// School runs GET /schools/{id}.
func (c *Client) School(ctx context.Context, id int) (models.SchoolView, error) {
	var p models.SchoolPayload
	if err := c.getJSON(ctx, "school_detail", "/schools/"+strconv.Itoa(id), nil, &p); err != nil {
		return models.SchoolView{}, fetchError("load school "+strconv.Itoa(id), err)
	}
	return p.Normalize(), nil
}

// SchoolProfessors runs GET /schools/{id}/professors with the filters passed
// through.
func (c *Client) SchoolProfessors(ctx context.Context, id int, f models.ProfessorFilters) (models.Page[models.ProfessorView], error) {
	var page models.Page[models.ProfessorPayload]
	path := "/schools/" + strconv.Itoa(id) + "/professors"
	if err := c.getJSON(ctx, "school_professors", path, f.Values(), &page); err != nil {
		return models.Page[models.ProfessorView]{}, fetchError("load professors for school "+strconv.Itoa(id), err)
	}
	views := models.MapPage(page, models.ProfessorPayload.Normalize)
	for i := range views.Items {
		if views.Items[i].SchoolID == 0 {
			views.Items[i].SchoolID = id
		}
	}
	return views, nil
}
