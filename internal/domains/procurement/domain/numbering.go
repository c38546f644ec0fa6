package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	poNumberPrefix = "PO-"
	poDayLayout    = "20060102"

	// MaxPOSequence keeps the suffix at four digits so numbers sort lexically.
	MaxPOSequence = 9999
)

var (
	ErrMalformedPONumber   = errors.New("purchase order number is malformed")
	ErrPOSequenceExhausted = errors.New("purchase order sequence exhausted for the day")
)

// PONumberDay renders the date component of a PO number.
func PONumberDay(t time.Time) string {
	return t.Format(poDayLayout)
}

// PONumberPrefix is the shared prefix of every PO number minted on day.
func PONumberPrefix(day string) string {
	return poNumberPrefix + day + "-"
}

// FormatPONumber renders PO-{YYYYMMDD}-{seq} with a four digit, zero padded sequence.
func FormatPONumber(day string, seq int) (string, error) {
	if seq < 1 || seq > MaxPOSequence {
		return "", fmt.Errorf("%w: sequence %d on %s", ErrPOSequenceExhausted, seq, day)
	}
	return fmt.Sprintf("%s%04d", PONumberPrefix(day), seq), nil
}

// ParsePONumber splits a PO number into its day and sequence.
func ParsePONumber(number string) (string, int, error) {
	rest, ok := strings.CutPrefix(number, poNumberPrefix)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedPONumber, number)
	}
	day, rawSeq, ok := strings.Cut(rest, "-")
	if !ok || len(day) != len(poDayLayout) {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedPONumber, number)
	}
	if _, err := time.Parse(poDayLayout, day); err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedPONumber, number)
	}
	seq, err := strconv.Atoi(rawSeq)
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedPONumber, number)
	}
	return day, seq, nil
}

// NextPONumber follows the greatest number already issued on day. An empty
// last starts the day at 1.
func NextPONumber(day, last string) (string, error) {
	if last == "" {
		return FormatPONumber(day, 1)
	}
	lastDay, seq, err := ParsePONumber(last)
	if err != nil {
		return "", err
	}
	if lastDay != day {
		return "", fmt.Errorf("%w: %q was not issued on %s", ErrMalformedPONumber, last, day)
	}
	return FormatPONumber(day, seq+1)
}
