package common

// DisplayText text to be displayed to end user, language code ISO 639-1. No markup allowed.
type DisplayText struct {
	Language string `json:"language" bson:"language" validate:"required,len=2"`
	Text     string `json:"text" bson:"text" validate:"required,min=1,max=512"`
}

// GeoLocation coordinates in decimal degrees, as strings the way OCPI transports them
type GeoLocation struct {
	Latitude  string `json:"latitude" bson:"latitude" validate:"required,max=10"`
	Longitude string `json:"longitude" bson:"longitude" validate:"required,max=11"`
}

// DisplayTextFor returns the text in the requested language, falling back to the first entry
func DisplayTextFor(texts []*DisplayText, language string) string {
	for _, t := range texts {
		if t != nil && t.Language == language {
			return t.Text
		}
	}
	if len(texts) > 0 && texts[0] != nil {
		return texts[0].Text
	}
	return ""
}
