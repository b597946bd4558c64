package managers

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return st
}

// recordingNotifier captures notification calls; managers fire them from
// goroutines, so access goes through the mutex and tests poll with
// require.Eventually.
type recordingNotifier struct {
	mu            sync.Mutex
	verifications []string // tokens, in order
	submitted     []models.Photo
	moderated     []string // "<id>:<action>"
}

func (n *recordingNotifier) SendVerificationEmail(email, firstName, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifications = append(n.verifications, token)
	return nil
}

func (n *recordingNotifier) SendPhotoSubmitted(photo models.Photo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, photo)
	return nil
}

func (n *recordingNotifier) SendPhotoModerated(photo models.Photo, action string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moderated = append(n.moderated, photo.ID+":"+action)
	return nil
}

func (n *recordingNotifier) verificationCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.verifications)
}

func (n *recordingNotifier) lastVerificationToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.verifications) == 0 {
		return ""
	}
	return n.verifications[len(n.verifications)-1]
}

func (n *recordingNotifier) submittedIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, len(n.submitted))
	for i, p := range n.submitted {
		ids[i] = p.ID
	}
	return ids
}

func (n *recordingNotifier) moderatedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.moderated)
}

// memStorage is an in-memory PhotoStorage.
type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (s *memStorage) Save(filename string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = data
	return "/uploads/" + filename, nil
}

func (s *memStorage) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filename)
	return nil
}

func (s *memStorage) has(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[filename]
	return ok
}

func imageBody() io.Reader {
	return bytes.NewReader([]byte("fake image bytes"))
}
