package ingestion_engine

import (
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// passageIDs hands out 63-bit non-negative ids, unique for the life of the
// process. Seeding from the wall clock keeps ids from colliding with rows a
// previous process left in a persistent index.
var passageIDs atomic.Int64

func init() {
	passageIDs.Store(time.Now().UnixNano() & (1<<62 - 1))
}

func nextPassageID() int64 {
	return passageIDs.Add(1) & (1<<63 - 1)
}

var collectionNameRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// CollectionName derives the index collection name for a document id. The
// mapping is deterministic so re-ingesting the same document replaces the
// same collection.
func CollectionName(documentID string) string {
	sanitized := collectionNameRe.ReplaceAllString(strings.ToLower(documentID), "_")
	return "pdf_" + sanitized
}
