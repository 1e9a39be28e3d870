// Package storage persists generated chunks and archives source documents.
//
// All I/O goes through an afero.Fs so callers can target the OS filesystem
// in production and an in-memory filesystem in tests:
//
//	saver := storage.NewChunkSaver(afero.NewOsFs(), cfg.Storage, log)
//	paths, err := saver.Save(set)
//
// Chunks are written under {chunks_path}/{document_id}/chunks as one
// {key}.txt content file plus one {key}.txt_metadata.json file each.
package storage
