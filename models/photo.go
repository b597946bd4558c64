package models

// Photo moderation states. Rejection deletes the record outright, so there is
// no persisted "rejected" state.
const (
	PhotoPending  = "pending"
	PhotoApproved = "approved"
)

// Photo is an uploaded photo's metadata; the binary lives in the photo
// storage backend under Filename.
type Photo struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Caption   string `json:"caption"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// PhotosDocument is the singleton photos.json aggregate, newest first,
// capped at MaxPhotos entries.
type PhotosDocument struct {
	Photos []Photo `json:"photos"`
}

// MaxPhotos bounds the photo document; the oldest entries fall off.
const MaxPhotos = 50

func NewPhotosDocument() *PhotosDocument {
	return &PhotosDocument{Photos: []Photo{}}
}
