// AngelaMos | 2026
// dto.go

package catalog

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug,max=50"`
}

type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug,max=50"`
}

type CreateTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        int      `json:"year"        validate:"required"`
	Description string   `json:"description" validate:"omitempty,max=4000"`
	Category    string   `json:"category"    validate:"required,slug"`
	Genres      []string `json:"genre"       validate:"required,min=1,dive,slug"`
}

type UpdateTitleRequest struct {
	Name        *string  `json:"name,omitempty"        validate:"omitempty,max=256"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Category    *string  `json:"category,omitempty"    validate:"omitempty,slug"`
	Genres      []string `json:"genre,omitempty"       validate:"omitempty,min=1,dive,slug"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Description string            `json:"description"`
	Rating      *float64          `json:"rating"`
	Category    *CategoryResponse `json:"category"`
	Genres      []GenreResponse   `json:"genre"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

type ListTitlesParams struct {
	Page     int
	PageSize int
	Category string
	Genre    string
	Name     string
	Year     *int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p *ListTitlesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListTitlesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}

func ToGenreResponse(g *Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}

func ToCategoryResponseList(cats []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, ToCategoryResponse(&cats[i]))
	}
	return out
}

func ToGenreResponseList(genres []Genre) []GenreResponse {
	out := make([]GenreResponse, 0, len(genres))
	for i := range genres {
		out = append(out, ToGenreResponse(&genres[i]))
	}
	return out
}

func ToTitleResponse(t *Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Rating:      t.Rating,
		Genres:      ToGenreResponseList(t.Genres),
	}
	if t.Category != nil {
		c := ToCategoryResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

func ToTitleResponseList(titles []Title) []TitleResponse {
	out := make([]TitleResponse, 0, len(titles))
	for i := range titles {
		out = append(out, ToTitleResponse(&titles[i]))
	}
	return out
}
