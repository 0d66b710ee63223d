package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Feature identifies one of the site's submission lists.
type Feature string

// Features
const (
	FeatureBibleStudy  Feature = "bible-study"
	FeatureNominations Feature = "nominations"
	FeatureVotes       Feature = "votes"
)

// Domain errors
var (
	ErrUnknownFeature = errors.New("feature must be one of: bible-study, nominations, votes")
	ErrMalformed      = errors.New("submission record is malformed")
)

// featureKeys maps each feature to its storage key.
var featureKeys = map[Feature]string{
	FeatureBibleStudy:  "ukccu_bible_study_registrations",
	FeatureNominations: "ukccu_nominations",
	FeatureVotes:       "ukccu_vote_data",
}

// featurePrefixes maps each feature to its submission ID prefix.
var featurePrefixes = map[Feature]string{
	FeatureBibleStudy:  "BS",
	FeatureNominations: "NOM",
	FeatureVotes:       "VOTE",
}

// ParseFeature validates a feature name from a URL.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if _, ok := featureKeys[f]; !ok {
		return "", ErrUnknownFeature
	}
	return f, nil
}

// StorageKey is the key under which the feature's list is persisted.
func (f Feature) StorageKey() string {
	return featureKeys[f]
}

// IDPrefix is the prefix of generated submission IDs.
func (f Feature) IDPrefix() string {
	return featurePrefixes[f]
}

// Field is one named value of a submission, kept in form order.
type Field struct {
	Name  string
	Value string
}

// Record is one accepted submission.
// INVARIANT: records are append-only; nothing edits or removes them.
type Record struct {
	SubmissionID string
	Timestamp    time.Time
	Fields       []Field
}

// Get returns a field value ("" when absent).
func (r Record) Get(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

const (
	keyTimestamp    = "timestamp"
	keySubmissionID = "submission_id"
)

// MarshalJSON writes a flat object: timestamp, the fields in order, submission_id.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writePair(&buf, keyTimestamp, r.Timestamp.UTC().Format(time.RFC3339Nano))
	for _, f := range r.Fields {
		buf.WriteByte(',')
		writePair(&buf, f.Name, f.Value)
	}
	buf.WriteByte(',')
	writePair(&buf, keySubmissionID, r.SubmissionID)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writePair(buf *bytes.Buffer, k, v string) {
	kb, _ := json.Marshal(k)
	vb, _ := json.Marshal(v)
	buf.Write(kb)
	buf.WriteByte(':')
	buf.Write(vb)
}

// UnmarshalJSON reads a flat object, preserving field order.
// Non-string values are kept as their JSON text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrMalformed
	}
	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return ErrMalformed
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value := rawString(raw)
		switch key {
		case keyTimestamp:
			ts, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return fmt.Errorf("%w: timestamp %q", ErrMalformed, value)
			}
			r.Timestamp = ts
		case keySubmissionID:
			r.SubmissionID = value
		default:
			r.Fields = append(r.Fields, Field{Name: key, Value: value})
		}
	}
	return nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// NewID builds a submission ID: PREFIX_<unix millis>_<9 lowercase chars>.
// PRE: suffix supplies at least 9 characters
// POST: Returns an ID unique as long as suffix is random
func NewID(f Feature, now time.Time, suffix string) string {
	s := strings.ToLower(strings.ReplaceAll(suffix, "-", ""))
	if len(s) > 9 {
		s = s[:9]
	}
	return f.IDPrefix() + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + s
}
