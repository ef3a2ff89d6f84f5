package product

type View struct {
	ID       int64  `json:"id"`
	Category int64  `json:"category"`
	Name     string `json:"name"`
	Model    string `json:"model"`
}

func MapProduct(p *Product) View {
	return View{ID: p.ID, Category: p.CategoryID, Name: p.Name, Model: p.Model}
}

func MapProducts(ps []*Product) []View {
	out := make([]View, 0, len(ps))
	for _, p := range ps {
		out = append(out, MapProduct(p))
	}
	return out
}
