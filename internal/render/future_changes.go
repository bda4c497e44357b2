package render

import "hermes/internal/chat"

// FutureChangesMap computes, for each section index, how many AutoReply
// entries later in the transcript (after position afterIndex) carry a
// SectionChange for that same index. Used when re-rendering an AutoReply
// embedded deep in a transcript, so e.g. a stale KnowledgeBase dump can
// be omitted in favor of its eventual latest version.
func FutureChangesMap(transcript []chat.TranscriptEntry, afterIndex int) map[int]int {
	counts := make(map[int]int)
	for i := afterIndex + 1; i < len(transcript); i++ {
		entry := transcript[i]
		if entry.AutoReply == nil {
			continue
		}
		for _, change := range entry.AutoReply.SectionChanges {
			counts[change.Index]++
		}
	}
	return counts
}
