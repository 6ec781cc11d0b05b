package shareindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

type walkTask struct {
	realPath   string
	aliasPath  string
	folderRoot RootFolder
}

type walkResult struct {
	task     walkTask
	filesize uint64
	err      error
}

const indexWorkers = 8

// IndexRoot walks rf.Path and records every visible file under an
// aliased path in the index, stamping each visited row with the
// pass's start time in epoch seconds (moved one past the previous
// pass's stamp when both fall within the same second), then deletes
// rows from a prior pass that this one no longer observed.
func (idx *Index) IndexRoot(rf RootFolder) error {
	epoch := time.Now().Unix()

	rootID, err := idx.upsertRootFolder(rf)
	if err != nil {
		return err
	}

	var last int64
	if err := idx.db.QueryRow(`SELECT COALESCE(MAX(indexed_at), 0) FROM folders WHERE root_id = ?`, rootID).Scan(&last); err != nil {
		return err
	}
	if epoch <= last {
		epoch = last + 1
	}

	tasks := make(chan walkTask, 256)
	results := make(chan walkResult, 256)

	var wg sync.WaitGroup
	workers := indexWorkers
	if n := runtime.NumCPU(); n < workers {
		workers = n
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				info, err := os.Stat(t.realPath)
				if err != nil {
					results <- walkResult{task: t, err: err}
					continue
				}
				results <- walkResult{task: t, filesize: uint64(info.Size())}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			if r.err != nil {
				idx.log.Warn("shareindex: skip file", "path", r.task.realPath, "error", r.err)
				continue
			}
			if err := idx.recordFile(rootID, rf, r.task, r.filesize, epoch); err != nil {
				idx.log.Warn("shareindex: record file failed", "path", r.task.realPath, "error", err)
			}
		}
	}()

	walkErr := filepath.WalkDir(rf.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rf.Path {
				return err
			}
			idx.log.Warn("shareindex: walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != rf.Path && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(rf.Path, path)
		if err != nil {
			return nil
		}

		tasks <- walkTask{
			realPath:   path,
			aliasPath:  AliasPath(rf.Alias, rel),
			folderRoot: rf,
		}
		return nil
	})

	close(tasks)
	wg.Wait()
	close(results)
	<-done

	if walkErr != nil {
		return walkErr
	}

	return idx.deleteStale(rootID, epoch)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (idx *Index) recordFile(rootID int64, rf RootFolder, t walkTask, filesize uint64, epoch int64) error {
	folderAlias, filename := splitAliasPath(t.aliasPath)

	folderID, err := idx.upsertFolder(rootID, folderAlias, rf.IsBuddyOnly, epoch)
	if err != nil {
		return err
	}

	fileID, err := idx.upsertFile(folderID, filename, t.aliasPath, epoch)
	if err != nil {
		return err
	}

	return idx.upsertMetadataSize(fileID, filesize)
}

func splitAliasPath(aliased string) (folderAlias, filename string) {
	i := strings.LastIndex(aliased, `\`)
	if i < 0 {
		return "", aliased
	}
	return aliased[:i], aliased[i+1:]
}

func (idx *Index) upsertFolder(rootID int64, alias string, buddyOnly bool, epoch int64) (int64, error) {
	_, err := idx.db.Exec(
		`INSERT INTO folders(root_id, alias, is_buddy_only, indexed_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(alias) DO UPDATE SET indexed_at=excluded.indexed_at`,
		rootID, alias, boolToInt(buddyOnly), epoch,
	)
	if err != nil {
		return 0, err
	}
	var id int64
	err = idx.db.QueryRow(`SELECT id FROM folders WHERE alias = ?`, alias).Scan(&id)
	return id, err
}

func (idx *Index) upsertFile(folderID int64, filename, aliasedPath string, epoch int64) (int64, error) {
	_, err := idx.db.Exec(
		`INSERT INTO files(folder_id, filename, indexed_at) VALUES(?, ?, ?)
		 ON CONFLICT(folder_id, filename) DO UPDATE SET indexed_at=excluded.indexed_at`,
		folderID, filename, epoch,
	)
	if err != nil {
		return 0, err
	}
	var id int64
	err = idx.db.QueryRow(`SELECT id FROM files WHERE folder_id = ? AND filename = ?`, folderID, filename).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := idx.indexTerms(id, filenameForTerms(aliasedPath)); err != nil {
		return id, err
	}

	return id, nil
}

// filenameForTerms derives the searchable text for a file: the full
// aliased path, folder alias included, so a search term matching a
// share's alias or an intermediate subfolder name finds the file even
// when the filename itself doesn't contain it.
func filenameForTerms(aliasedPath string) string {
	return aliasedPath
}

func (idx *Index) indexTerms(fileID int64, text string) error {
	terms := extractTerms(text)

	// Clear old associations so renamed files don't keep stale terms.
	if _, err := idx.db.Exec(`DELETE FROM file_terms WHERE file_id = ?`, fileID); err != nil {
		return err
	}

	for _, term := range terms {
		termID, err := idx.upsertTerm(term)
		if err != nil {
			return err
		}
		if _, err := idx.db.Exec(
			`INSERT OR IGNORE INTO file_terms(file_id, term_id) VALUES(?, ?)`, fileID, termID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) upsertTerm(term string) (int64, error) {
	_, err := idx.db.Exec(`INSERT OR IGNORE INTO terms(term) VALUES(?)`, term)
	if err != nil {
		return 0, err
	}
	var id int64
	err = idx.db.QueryRow(`SELECT id FROM terms WHERE term = ?`, term).Scan(&id)
	return id, err
}

func (idx *Index) upsertMetadataSize(fileID int64, filesize uint64) error {
	_, err := idx.db.Exec(
		`INSERT INTO file_metadata(file_id, filesize) VALUES(?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET filesize=excluded.filesize`,
		fileID, filesize,
	)
	return err
}

// FillMetadata persists audio attributes for fileID once parsed.
func (idx *Index) FillMetadata(fileID int64, bitrate, duration uint32, vbr bool, sampleRate, bitDepth uint32) error {
	_, err := idx.db.Exec(
		`UPDATE file_metadata SET bitrate=?, duration=?, vbr=?, sample_rate=?, bit_depth=? WHERE file_id=?`,
		bitrate, duration, boolToInt(vbr), sampleRate, bitDepth, fileID,
	)
	return err
}

func (idx *Index) deleteStale(rootID int64, epoch int64) error {
	if _, err := idx.db.Exec(
		`DELETE FROM files WHERE folder_id IN (SELECT id FROM folders WHERE root_id = ?) AND indexed_at < ?`,
		rootID, epoch,
	); err != nil {
		return err
	}
	_, err := idx.db.Exec(`DELETE FROM folders WHERE root_id = ? AND indexed_at < ?`, rootID, epoch)
	return err
}
