package dto

import (
	"math"
	"strconv"
	"strings"
)

// Distance accepts both a JSON number and a quoted numeric string, since the
// frontend submits whatever the distance input held. Anything unparseable
// decodes to NaN so the ledger can reject it as an invalid distance rather
// than a malformed request.
type Distance float64

func (d *Distance) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*d = Distance(math.NaN())
		return nil
	}
	*d = Distance(f)
	return nil
}

// AddRunDTO carries the run fields plus the legacy body credentials used
// when no bearer token is presented.
type AddRunDTO struct {
	UserID   string   `json:"userId"`
	Password string   `json:"password"`
	Location string   `json:"location"`
	Distance Distance `json:"distance"`
}
