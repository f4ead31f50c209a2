package youtube

import (
	"regexp"
	"strconv"

	"google.golang.org/api/youtube/v3"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts YouTube's ISO 8601 duration string to total seconds,
// e.g. PT4M13S -> 253, PT1H2M30S -> 3750, PT45S -> 45. Upstream data is
// untrusted, so anything unparseable yields 0 rather than an error.
func ParseDuration(isoDuration string) int {
	m := durationPattern.FindStringSubmatch(isoDuration)
	if m == nil {
		return 0
	}
	hours := atoiDefault(m[1])
	minutes := atoiDefault(m[2])
	seconds := atoiDefault(m[3])
	return hours*3600 + minutes*60 + seconds
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// BestThumbnail picks the highest quality thumbnail URL available, or nil
// when the video has none.
func BestThumbnail(t *youtube.ThumbnailDetails) *string {
	if t == nil {
		return nil
	}
	for _, candidate := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if candidate != nil && candidate.Url != "" {
			url := candidate.Url
			return &url
		}
	}
	return nil
}
