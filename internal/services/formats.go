package services

import (
	"fmt"
	"sort"

	"vidfetch-backend/internal/extractor"
	"vidfetch-backend/internal/models"
)

const (
	canonicalVideoExt = "mp4"
	canonicalAudioExt = "m4a"

	codecNone = "none"
)

// isCanonicalExt reports whether ext belongs to the mp4 container family.
func isCanonicalExt(ext string) bool {
	return ext == canonicalVideoExt || ext == canonicalAudioExt
}

func declared(codec *string) bool {
	return codec != nil && *codec != ""
}

func isNone(codec *string) bool {
	return codec != nil && *codec == codecNone
}

// classify returns the media kind of f and whether it carries an audio stream.
// A declared video codec is assumed to come with sound unless acodec is "none".
func classify(f extractor.RawFormat) (models.MediaKind, bool) {
	switch {
	case isNone(f.VCodec):
		return models.KindAudio, true
	case declared(f.VCodec):
		return models.KindVideo, !isNone(f.ACodec)
	default:
		return models.KindOther, false
	}
}

func kindRank(k models.MediaKind) int {
	switch k {
	case models.KindVideo:
		return 0
	case models.KindAudio:
		return 1
	default:
		return 2
	}
}

type candidate struct {
	format   models.VideoFormat
	hasAudio bool
	hasBase  bool
	hasNote  bool
}

func newCandidate(f extractor.RawFormat) candidate {
	kind, hasAudio := classify(f)

	base := f.FormatNote
	if base == "" {
		base = f.Format
	}
	hasBase := base != ""
	if !hasBase {
		base = "unknown"
	}

	quality := f.FormatNote
	if quality == "" {
		quality = "unknown"
	}

	label := base
	if kind == models.KindVideo {
		if hasAudio {
			label += " (Video + Sound)"
		} else {
			label += " (Video Only - No Sound)"
		}
	}

	return candidate{
		format: models.VideoFormat{
			FormatID:     f.FormatID,
			Extension:    f.Ext,
			Quality:      quality,
			QualityLabel: label,
			Type:         kind,
			Filesize:     f.SizeBytes(),
			FPS:          f.FPSValue(),
		},
		hasAudio: hasAudio,
		hasBase:  hasBase,
		hasNote:  f.FormatNote != "",
	}
}

// qualityKey groups duplicates. Unclassified entries only collide with each
// other, never with audio or video.
func (c candidate) qualityKey() string {
	var key string
	switch {
	case c.hasBase:
		key = c.format.QualityLabel
	case c.hasNote:
		key = c.format.Quality
	case c.format.Type == models.KindVideo:
		key = fmt.Sprintf("%dMB", c.format.Filesize/1_000_000)
	default:
		key = fmt.Sprintf("audio-%dMB", c.format.Filesize/1_000_000)
	}
	if c.format.Type == models.KindOther {
		return "other:" + key
	}
	return key
}

// NormalizeFormats turns raw extractor descriptors into the ranked,
// de-duplicated list offered to clients. Every returned entry has a positive
// size. mp4/m4a entries are preferred; when none exist, any sized entry is
// listed and non-mp4 ones are marked as requiring conversion.
func NormalizeFormats(raw []extractor.RawFormat) []models.VideoFormat {
	var preferred, sized []candidate
	for _, f := range raw {
		c := newCandidate(f)
		if c.format.Filesize == 0 {
			continue
		}
		sized = append(sized, c)
		if isCanonicalExt(c.format.Extension) {
			preferred = append(preferred, c)
		}
	}

	selected := preferred
	if len(selected) == 0 {
		selected = sized
		for i := range selected {
			if !isCanonicalExt(selected[i].format.Extension) {
				selected[i].format.RequiresConversion = true
			}
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if ra, rb := kindRank(a.format.Type), kindRank(b.format.Type); ra != rb {
			return ra < rb
		}
		if a.hasAudio != b.hasAudio {
			return a.hasAudio
		}
		return a.format.Filesize > b.format.Filesize
	})

	out := make([]models.VideoFormat, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		key := c.qualityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c.format)
	}
	return out
}

// mediaKindOf exposes the classification rule to the download orchestrator.
func mediaKindOf(f extractor.RawFormat) models.MediaKind {
	kind, _ := classify(f)
	return kind
}
