package media

import (
	"fmt"

	"github.com/google/uuid"
)

// PhotoPaths holds the three bucket-relative object paths for one photo.
// All three share a single stem derived from (ownerID, fileID); the fileID
// is minted fresh per orchestration call so concurrent uploads can never
// collide, and a retry inside one call reuses the same paths (the storage
// layer upserts).
type PhotoPaths struct {
	Original   string
	ThumbSmall string
	ThumbLarge string
}

// NewPhotoPaths computes the deterministic photo path set:
//
//	spots/{spotID}/photos/originals/{ownerID}_{fileID}.jpg
//	spots/{spotID}/photos/thumbnails/{ownerID}_{fileID}_240.jpg
//	spots/{spotID}/photos/thumbnails/{ownerID}_{fileID}_720.jpg
func NewPhotoPaths(spotID, ownerID, fileID uuid.UUID) PhotoPaths {
	stem := fmt.Sprintf("%s_%s", ownerID, fileID)
	return PhotoPaths{
		Original:   fmt.Sprintf("spots/%s/photos/originals/%s.jpg", spotID, stem),
		ThumbSmall: fmt.Sprintf("spots/%s/photos/thumbnails/%s_240.jpg", spotID, stem),
		ThumbLarge: fmt.Sprintf("spots/%s/photos/thumbnails/%s_720.jpg", spotID, stem),
	}
}

// VideoPaths holds the two bucket-relative object paths for one video.
type VideoPaths struct {
	Video     string
	Thumbnail string
}

// NewVideoPaths computes the video path pair:
//
//	{spotID}/{fileName}.mp4
//	{spotID}/{fileName}-thumb.jpg
func NewVideoPaths(spotID uuid.UUID, fileName string) VideoPaths {
	return VideoPaths{
		Video:     fmt.Sprintf("%s/%s.mp4", spotID, fileName),
		Thumbnail: fmt.Sprintf("%s/%s-thumb.jpg", spotID, fileName),
	}
}
