package managers

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/storage"
	"github.com/paulfarrow/runclubbackend/store"
	"github.com/paulfarrow/runclubbackend/utils"
)

const photosDocument = "photos"

// Photos owns the photos document and the moderation queue. Binaries go
// through the PhotoStorage backend; metadata lives in photos.json.
type Photos struct {
	mu       sync.Mutex
	store    *store.Store
	files    storage.PhotoStorage
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewPhotos(st *store.Store, files storage.PhotoStorage, notifier Notifier, log *zap.SugaredLogger) *Photos {
	return &Photos{store: st, files: files, notifier: notifier, log: log, now: time.Now}
}

func (m *Photos) readDoc() *models.PhotosDocument {
	doc := models.NewPhotosDocument()
	m.store.Read(photosDocument, doc)
	if doc.Photos == nil {
		doc.Photos = []models.Photo{}
	}
	return doc
}

// Submit stores the binary, creates a pending photo at the head of the
// document and notifies the moderator. The upload handler has already
// checked MIME type and size; required fields are re-checked here.
func (m *Photos) Submit(file io.Reader, ext, contentType, firstName, lastName, caption, userID string) (models.Photo, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if file == nil {
		return models.Photo{}, ErrNoFile
	}
	if firstName == "" || lastName == "" {
		return models.Photo{}, ErrMissingName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	filename := fmt.Sprintf("photo-%d-%s%s", now.UnixMilli(), uuid.New().String()[:8], ext)

	url, err := m.files.Save(filename, file, contentType)
	if err != nil {
		m.log.Errorw("save photo file", "filename", filename, "error", err)
		return models.Photo{}, ErrPersistence
	}

	if userID == "" {
		userID = utils.GenerateUserID(firstName, lastName, now)
	}

	photo := models.Photo{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Filename:  filename,
		URL:       url,
		FirstName: firstName,
		LastName:  lastName,
		Caption:   strings.TrimSpace(caption),
		UserID:    userID,
		Timestamp: now.Format(time.RFC3339),
		Status:    models.PhotoPending,
	}

	doc := m.readDoc()
	doc.Photos = append([]models.Photo{photo}, doc.Photos...)
	if len(doc.Photos) > models.MaxPhotos {
		doc.Photos = doc.Photos[:models.MaxPhotos]
	}

	if !m.store.Write(photosDocument, doc) {
		return models.Photo{}, ErrPersistence
	}

	m.log.Infow("photo submitted", "photoId", photo.ID, "by", userID)
	m.notify(func() error { return m.notifier.SendPhotoSubmitted(photo) })
	return photo, nil
}

// ListApproved returns the publicly visible gallery.
func (m *Photos) ListApproved() []models.Photo {
	return m.listByStatus(models.PhotoApproved)
}

// ListPending returns the moderation queue.
func (m *Photos) ListPending() []models.Photo {
	return m.listByStatus(models.PhotoPending)
}

func (m *Photos) listByStatus(status string) []models.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	out := make([]models.Photo, 0, len(doc.Photos))
	for _, p := range doc.Photos {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Approve moves a pending photo into the gallery.
func (m *Photos) Approve(photoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	idx := indexOf(doc.Photos, photoID)
	if idx < 0 {
		return ErrPhotoNotFound
	}

	doc.Photos[idx].Status = models.PhotoApproved
	photo := doc.Photos[idx]

	if !m.store.Write(photosDocument, doc) {
		return ErrPersistence
	}

	m.log.Infow("photo approved", "photoId", photoID)
	m.notify(func() error { return m.notifier.SendPhotoModerated(photo, "approved") })
	return nil
}

// Reject deletes the photo's file and record and notifies the moderator.
func (m *Photos) Reject(photoID string) error {
	photo, err := m.remove(photoID, "")
	if err != nil {
		return err
	}
	m.notify(func() error { return m.notifier.SendPhotoModerated(photo, "rejected") })
	return nil
}

// Delete removes a photo on the owner's behalf, without a moderation
// notification. callerID is enforced when present; an empty callerID is the
// legacy unauthenticated path and is allowed but logged.
func (m *Photos) Delete(photoID, callerID string) error {
	if callerID == "" {
		m.log.Warnw("unauthenticated photo deletion", "photoId", photoID)
	}
	_, err := m.remove(photoID, callerID)
	return err
}

func (m *Photos) remove(photoID, callerID string) (models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	idx := indexOf(doc.Photos, photoID)
	if idx < 0 {
		return models.Photo{}, ErrPhotoNotFound
	}
	photo := doc.Photos[idx]
	if callerID != "" && photo.UserID != callerID {
		return models.Photo{}, ErrNotOwner
	}

	if err := m.files.Delete(photo.Filename); err != nil {
		m.log.Errorw("delete photo file", "filename", photo.Filename, "error", err)
	}

	doc.Photos = append(doc.Photos[:idx], doc.Photos[idx+1:]...)
	if !m.store.Write(photosDocument, doc) {
		return models.Photo{}, ErrPersistence
	}

	m.log.Infow("photo removed", "photoId", photoID)
	return photo, nil
}

func indexOf(photos []models.Photo, id string) int {
	for i, p := range photos {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m *Photos) notify(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			m.log.Errorw("send notification", "error", err)
		}
	}()
}
