// Package blob archives transcripts and run results to Azure Blob Storage as
// zstd compressed JSON
package blob

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"time"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	exdom "tasksync/internal/services/extraction/domain"
	"tasksync/internal/services/sync/domain"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/klauspost/compress/zstd"
)

// Options configures the Archiver
type Options struct {
	Enabled    bool
	AccountURL string
	Container  string
	// Prefix is prepended to every blob name
	Prefix string
}

// FromConfig reads ARCHIVE_* settings
func FromConfig(c config.Conf) Options {
	c = c.Prefix("ARCHIVE_")
	return Options{
		Enabled:    c.MayBool("ENABLED", false),
		AccountURL: c.MayString("ACCOUNT_URL", ""),
		Container:  c.MayString("CONTAINER", "transcripts"),
		Prefix:     c.MayString("PREFIX", ""),
	}
}

// uploader is the part of *azblob.Client the archiver uses
type uploader interface {
	UploadBuffer(ctx context.Context, container, blob string, buf []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	CreateContainer(ctx context.Context, container string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
}

// Archiver implements the sync Archiver
type Archiver struct {
	client uploader
	opts   Options
	enc    *zstd.Encoder
	log    logger.Logger
}

var _ domain.Archiver = (*Archiver)(nil)

// New connects with the default Azure credential chain (environment, workload
// identity, managed identity, az cli)
func New(o Options) (*Archiver, error) {
	if o.AccountURL == "" || o.Container == "" {
		return nil, perr.InvalidArgf("archive: ACCOUNT_URL and CONTAINER are required")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnauthorized, "archive: azure credential")
	}
	client, err := azblob.NewClient(o.AccountURL, cred, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "archive: blob client")
	}
	return newArchiver(client, o)
}

func newArchiver(c uploader, o Options) (*Archiver, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "archive: zstd encoder")
	}
	return &Archiver{client: c, opts: o, enc: enc, log: *logger.Named("archive")}, nil
}

// EnsureContainer creates the container when it does not exist
func (a *Archiver) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.opts.Container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "archive: create container")
	}
	return nil
}

// Record is the archived document
type Record struct {
	Transcript exdom.Transcript `json:"transcript"`
	Result     exdom.Result     `json:"result"`
	ArchivedAt time.Time        `json:"archivedAt"`
}

// Archive uploads one record and returns its blob path
func (a *Archiver) Archive(ctx context.Context, tr exdom.Transcript, res exdom.Result) (string, error) {
	rec := Record{Transcript: tr, Result: res, ArchivedAt: time.Now().UTC()}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "archive: encode")
	}
	buf := a.enc.EncodeAll(raw, make([]byte, 0, len(raw)/3))

	name := BlobName(a.opts.Prefix, rec.ArchivedAt, tr.ID, res.RunID)
	_, err = a.client.UploadBuffer(ctx, a.opts.Container, name, buf, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"transcript_id": to.Ptr(tr.ID),
			"run_id":        to.Ptr(res.RunID),
			"encoding":      to.Ptr("zstd"),
		},
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "archive: upload")
	}
	a.log.Debug().Str("blob", name).Int("raw", len(raw)).Int("stored", len(buf)).Msg("transcript archived")
	return a.opts.Container + "/" + name, nil
}

// BlobName lays records out by day: prefix/2026/10/18/<transcript>-<run>.json.zst
func BlobName(prefix string, at time.Time, transcriptID, runID string) string {
	id := safe(transcriptID)
	if runID != "" {
		id += "-" + safe(runID)
	}
	return path.Join(strings.Trim(prefix, "/"), at.UTC().Format("2006/01/02"), id+".json.zst")
}

func safe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
	if s == "" {
		return "unnamed"
	}
	return s
}

// Decode reverses Archive's encoding
func Decode(b []byte) (Record, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Record{}, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(b, nil)
	if err != nil {
		return Record{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "archive: zstd")
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, perr.Wrap(err, perr.ErrorCodeJSON, "archive: decode")
	}
	return rec, nil
}
