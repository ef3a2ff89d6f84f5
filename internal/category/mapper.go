package category

type View struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func MapCategory(c *Category) View {
	return View{ID: c.ID, Name: c.Name}
}

func MapCategories(cs []*Category) []View {
	out := make([]View, 0, len(cs))
	for _, c := range cs {
		out = append(out, MapCategory(c))
	}
	return out
}
