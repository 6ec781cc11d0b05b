package shareindex

import (
	"fmt"
	"strings"
)

// Result is one matched file, with its aliased wire path and whatever
// audio metadata has been populated so far.
type Result struct {
	FileID     int64
	AliasPath  string
	Filesize   uint64
	Bitrate    uint32
	Duration   uint32
	VBR        bool
	SampleRate uint32
	BitDepth   uint32
	HasMetadata bool
}

// Search returns files whose indexed terms match every term derived
// from query, split into public and buddy-only-private groups.
// A query that yields no term of two or more characters returns no
// results without touching the database.
func (idx *Index) Search(query string) (public, private []Result, err error) {
	terms := extractTerms(query)
	if len(terms) == 0 {
		return nil, nil, nil
	}

	placeholders := make([]string, len(terms))
	args := make([]any, 0, len(terms)+1)
	for i, t := range terms {
		placeholders[i] = "?"
		args = append(args, t)
	}
	args = append(args, len(terms))

	q := fmt.Sprintf(`
		SELECT f.id, fo.alias, f.filename, fo.is_buddy_only,
		       m.filesize, m.bitrate, m.duration, m.vbr, m.sample_rate, m.bit_depth
		FROM files f
		JOIN folders fo ON fo.id = f.folder_id
		JOIN file_metadata m ON m.file_id = f.id
		JOIN file_terms ft ON ft.file_id = f.id
		JOIN terms t ON t.id = ft.term_id
		WHERE t.term IN (%s)
		GROUP BY f.id
		HAVING COUNT(DISTINCT t.term) = ?
	`, strings.Join(placeholders, ","))

	rows, err := idx.db.Query(q, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("shareindex: search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, filesize              int64
			bitrate, duration         uint32
			vbr                       int
			sampleRate, bitDepth      uint32
			folderAlias, filename     string
			isBuddyOnly               int
		)
		if err := rows.Scan(&id, &folderAlias, &filename, &isBuddyOnly, &filesize, &bitrate, &duration, &vbr, &sampleRate, &bitDepth); err != nil {
			return nil, nil, err
		}

		r := Result{
			FileID:      id,
			AliasPath:   folderAlias + `\` + filename,
			Filesize:    uint64(filesize),
			Bitrate:     bitrate,
			Duration:    duration,
			VBR:         vbr != 0,
			SampleRate:  sampleRate,
			BitDepth:    bitDepth,
			HasMetadata: bitrate != 0 || duration != 0 || sampleRate != 0,
		}

		if isBuddyOnly != 0 {
			private = append(private, r)
		} else {
			public = append(public, r)
		}
	}

	return public, private, rows.Err()
}
