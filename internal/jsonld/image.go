package jsonld

// ImageObject describes img through its 540x540 thumbnail. An empty
// description falls back to the image name.
func ImageObject(img Image, description string) (*Document, error) {
	url, err := img.Rendition(ThumbnailSize)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = img.Name
	}
	return newTyped("ImageObject").
		Set("contentUrl", url).
		Set("description", description).
		Set("width", thumbnailEdge).
		Set("height", thumbnailEdge), nil
}
