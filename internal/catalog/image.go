package catalog

// ImageSize is a TMDB image size token.
type ImageSize string

const (
	ImageW92      ImageSize = "w92"
	ImageW154     ImageSize = "w154"
	ImageW185     ImageSize = "w185"
	ImageW342     ImageSize = "w342"
	ImageW500     ImageSize = "w500"
	ImageW780     ImageSize = "w780"
	ImageOriginal ImageSize = "original"
)

const defaultImageBaseURL = "https://image.tmdb.org/t/p/"

// ImageURL builds the absolute URL for an image path at the given size.
// An empty path yields an empty URL.
func ImageURL(path string, size ImageSize) string {
	if path == "" {
		return ""
	}
	return defaultImageBaseURL + string(size) + path
}
