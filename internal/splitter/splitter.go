// Package splitter breaks documents into overlapping fixed-size chunks,
// preferring the largest semantic boundary (paragraph, line, word) that
// still yields chunks under the size limit.
package splitter

import (
	"strconv"
	"strings"

	"infraguard/internal/domain"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter produces chunks of at most chunkSize characters where
// consecutive chunks from the same document share roughly overlap
// characters of content.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. Zero or invalid values fall back to a 1000
// character chunk size with 100 characters of overlap.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 100
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}
}

// Split chunks every document in order. Chunks inherit the document's
// provenance and are numbered front to back within their document.
func (s *Splitter) Split(documents []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range documents {
		idx := 0
		for _, text := range s.splitText(doc.Content, s.separators) {
			if text == "" {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				DocumentID: doc.ID,
				ChunkID:    doc.ID + ":" + strconv.Itoa(idx),
				Source:     doc.Path,
				Text:       text,
				Index:      idx,
			})
			idx++
		}
	}
	return chunks
}

// splitText splits on the first separator present in the text, merges the
// pieces back into chunks under the size limit, and recurses with smaller
// separators on any piece that is still too large.
func (s *Splitter) splitText(text string, separators []string) []string {
	if text == "" {
		return nil
	}
	sep := ""
	var rest []string
	for i, c := range separators {
		if c == "" {
			break
		}
		if strings.Contains(text, c) {
			sep = c
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardCut(text)
	}

	splits := strings.Split(text, sep)
	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		final = append(final, s.splitText(piece, rest)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge joins consecutive pieces into chunks of at most chunkSize,
// carrying at most overlap characters of the previous chunk forward.
func (s *Splitter) merge(splits []string, sep string) []string {
	var merged []string
	var window []string
	total := 0
	for _, piece := range splits {
		add := len(piece)
		if len(window) > 0 {
			add += len(sep)
		}
		if total+add > s.chunkSize && len(window) > 0 {
			if doc := joinTrim(window, sep); doc != "" {
				merged = append(merged, doc)
			}
			for len(window) > 0 && (total > s.overlap || total+add > s.chunkSize) {
				drop := len(window[0])
				if len(window) > 1 {
					drop += len(sep)
				}
				total -= drop
				window = window[1:]
				add = len(piece)
				if len(window) > 0 {
					add += len(sep)
				}
			}
		}
		window = append(window, piece)
		total += add
	}
	if doc := joinTrim(window, sep); doc != "" {
		merged = append(merged, doc)
	}
	return merged
}

// hardCut is the last resort for text with no usable separator.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

func joinTrim(pieces []string, sep string) string {
	return strings.TrimSpace(strings.Join(pieces, sep))
}
