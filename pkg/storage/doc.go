// Package storage keeps a session snapshot in a plain settings file.
//
// FileStore backs the igapi --settings flag: the snapshot JSON is written
// unencrypted, so the file is created 0600. Writes go through
// WriteFileAtomic, which renames a temporary file over the target so a reader
// never sees a half written snapshot.
//
// Usage:
//
//	store, err := storage.NewFileStore("settings.json")
//	if err != nil {
//	    return err
//	}
//	data, err := store.Load()
//	if errors.Is(err, storage.ErrNotFound) {
//	    // first run, log in
//	}
package storage
