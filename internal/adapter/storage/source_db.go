package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"path"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/goydb/mrview/internal/adapter/bbolt_engine"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
	"gopkg.in/mgo.v2/bson"
)

var _ port.SourceDatabase = (*Database)(nil)

var docsBucket = []byte("docs")

// Database is a bbolt backed source document database with
// CouchDB style revisions, deletion tombstones and a change
// feed. The view engine only reads it, writes come through the
// document API.
type Database struct {
	name string
	db   port.DatabaseEngine
}

func (s *Storage) CreateDatabase(ctx context.Context, name string) (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[name]; ok {
		return db, nil
	}

	db, err := bbolt_engine.Open(path.Join(s.path, name))
	if err != nil {
		return nil, err
	}

	database := &Database{
		name: name,
		db:   db,
	}

	err = db.WriteTransaction(ctx, func(tx port.EngineWriteTransaction) error {
		for _, bucket := range [][]byte{docsBucket, changesBucket, changesInvalidationBucket} {
			err := tx.EnsureBucket(bucket)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dbs[name] = database

	return database, nil
}

func (d *Database) Name() string {
	return d.name
}

func (d *Database) String() string {
	return "<Database name=" + d.name + ">"
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Info(ctx context.Context) (*port.DatabaseInfo, error) {
	info := &port.DatabaseInfo{DBName: d.name}

	err := d.db.ReadTransaction(ctx, func(tx port.EngineReadTransaction) error {
		info.UpdateSeq = tx.Sequence(changesBucket)
		info.DocCount = tx.BucketStats(docsBucket).Documents
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

func (d *Database) PutDocument(ctx context.Context, doc *model.Document) (string, error) {
	var rev string
	err := d.db.WriteTransaction(ctx, func(tx port.EngineWriteTransaction) error {
		oldDoc, err := d.getDocumentTx(tx, doc.ID)
		if err != nil && err != port.ErrNotFound {
			return err
		}
		if oldDoc != nil && !oldDoc.ValidUpdateRevision(doc) {
			return port.ErrConflict
		}

		revSeq := doc.NextRevSequence()
		hash := md5.New()
		err = cbor.NewEncoder(hash).Encode(doc.Data)
		if err != nil {
			return err
		}
		rev = strconv.Itoa(revSeq) + "-" + hex.EncodeToString(hash.Sum(nil))
		doc.Rev = rev

		data, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		err = tx.Put(docsBucket, []byte(doc.ID), data)
		if err != nil {
			return err
		}

		return d.recordChange(tx, doc)
	})
	if err != nil {
		return "", err
	}

	return rev, nil
}

func (d *Database) GetDocument(ctx context.Context, docID string) (*model.Document, error) {
	var doc *model.Document
	err := d.db.ReadTransaction(ctx, func(tx port.EngineReadTransaction) error {
		var err error
		doc, err = d.getDocumentTx(tx, docID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, port.ErrNotFound
	}

	return doc, nil
}

func (d *Database) getDocumentTx(tx port.EngineReadTransaction, docID string) (*model.Document, error) {
	data, err := tx.Get(docsBucket, []byte(docID))
	if err != nil {
		return nil, err
	}

	var doc model.Document
	err = bson.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}
	if doc.Data == nil {
		doc.Data = make(map[string]interface{})
	}
	doc.Data["_id"] = doc.ID
	doc.Data["_rev"] = doc.Rev
	if doc.Deleted {
		doc.Data["_deleted"] = true
	}

	return &doc, nil
}

func (d *Database) DeleteDocument(ctx context.Context, docID, rev string) (*model.Document, error) {
	doc := &model.Document{
		ID:      docID,
		Rev:     rev,
		Deleted: true,
	}

	_, err := d.PutDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
