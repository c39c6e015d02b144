package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

// Fingerprints are stable sha256 digests over the semantically relevant
// fields of an input. They key the match result cache: two inputs with equal
// fingerprints are interchangeable for scoring purposes.

func writeString(h hash.Hash, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	h.Write(lenBuf[:])
	h.Write([]byte(s))
}

func writeFloat(h hash.Hash, f float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	h.Write(buf[:])
}

func writeInt(h hash.Hash, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(n)))
	h.Write(buf[:])
}

func writeBool(h hash.Hash, b bool) {
	if b {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

func writeVector(h hash.Hash, v []float32) {
	writeInt(h, len(v))
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	h.Write(buf)
}

// Fingerprint returns the job's stable digest.
func (j *JobRequirement) Fingerprint() string {
	h := sha256.New()
	writeString(h, j.ID)
	writeInt(h, len(j.Skills))
	for _, s := range j.Skills {
		writeString(h, s.Name)
		writeBool(h, s.MustHave)
	}
	writeFloat(h, j.MinYears)
	writeInt(h, int(j.Seniority))
	writeInt(h, int(j.Education))
	writeVector(h, j.Embedding)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the candidate's stable digest.
func (c *CandidateProfile) Fingerprint() string {
	h := sha256.New()
	writeString(h, c.ID)
	writeInt(h, len(c.Skills))
	for _, s := range c.Skills {
		writeString(h, s.Name)
		writeFloat(h, s.Proficiency)
		writeFloat(h, s.Confidence)
	}
	writeInt(h, len(c.Experience))
	for _, e := range c.Experience {
		writeString(h, e.Title)
		writeString(h, e.Company)
		writeInt(h, e.Months)
		writeBool(h, e.HasMonths)
	}
	writeInt(h, len(c.Education))
	for _, e := range c.Education {
		writeInt(h, int(e.Level))
		writeString(h, e.Field)
	}
	writeFloat(h, c.Quality)
	writeVector(h, c.Embedding)
	return hex.EncodeToString(h.Sum(nil))
}

// PoolFingerprint digests a candidate pool order-insensitively:
// the same set of profiles fingerprints identically however it is listed.
func PoolFingerprint(pool []CandidateProfile) string {
	prints := make([]string, len(pool))
	for i := range pool {
		prints[i] = pool[i].Fingerprint()
	}
	sort.Strings(prints)

	h := sha256.New()
	writeInt(h, len(prints))
	for _, p := range prints {
		writeString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
