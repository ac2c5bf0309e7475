package value

// Attribute is one trait of an upgraded gift.
type Attribute struct {
	Name           string `json:"name"`
	RarityPermille int    `json:"rarity_permille"`
}

// GiftAttributes holds the three optional traits. Pattern never affects price.
type GiftAttributes struct {
	Model    *Attribute `json:"model"`
	Backdrop *Attribute `json:"backdrop"`
	Pattern  *Attribute `json:"pattern"`
}

func (a GiftAttributes) ModelName() string {
	return nameOf(a.Model)
}

func (a GiftAttributes) BackdropName() string {
	return nameOf(a.Backdrop)
}

func nameOf(attr *Attribute) string {
	if attr == nil {
		return ""
	}
	return attr.Name
}
