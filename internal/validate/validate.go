package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"cardauction/internal/domain"
)

var (
	reAuctionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reAttrKey   = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,40}$`)
)

// CardID parses a path id and checks it against the kind's fixed range.
func CardID(kind domain.Kind, s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, kind.InRange(n)
}

// Int parses any integer, in range or not. The match lookup is total, so
// out-of-range ids are not rejected there.
func Int(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// LookupID parses an id for total lookups. Integers too large for int map
// to 0, which no table holds, instead of failing.
func LookupID(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) {
		return 0, true
	}
	return n, err == nil
}

// AuctionID validates an opaque auction token.
func AuctionID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reAuctionID.MatchString(s)
}

// Text trims a customization field and enforces a max length.
func Text(s *string, max int) (*string, bool) {
	if s == nil {
		return nil, true
	}
	v := strings.TrimSpace(*s)
	if len([]rune(v)) > max {
		return nil, false
	}
	return &v, true
}

func AttributeKey(s string) (domain.AttributeKey, bool) {
	s = strings.TrimSpace(s)
	return domain.AttributeKey(s), reAttrKey.MatchString(s)
}

// Score enforces the non-negative score rule of the match table.
func Score(n int) bool { return n >= 0 }
