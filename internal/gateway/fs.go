// Package gateway wires the path mapper, access policy, namespace view,
// upload/download pipelines, session manager, and event bus into the four
// methods github.com/pkg/sftp's request server calls: Fileread, Filewrite,
// Filecmd, and Filelist. One FS is constructed per authenticated SSH
// channel.
package gateway

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"

	"github.com/nimbusdepot/gatesftp/internal/download"
	"github.com/nimbusdepot/gatesftp/internal/events"
	"github.com/nimbusdepot/gatesftp/internal/handles"
	"github.com/nimbusdepot/gatesftp/internal/log"
	"github.com/nimbusdepot/gatesftp/internal/models"
	"github.com/nimbusdepot/gatesftp/internal/namespace"
	"github.com/nimbusdepot/gatesftp/internal/policy"
	"github.com/nimbusdepot/gatesftp/internal/session"
	"github.com/nimbusdepot/gatesftp/internal/store"
	"github.com/nimbusdepot/gatesftp/internal/upload"
	"github.com/nimbusdepot/gatesftp/internal/vpath"
)

// FS implements the sftp.Handlers quartet for one authenticated user. It
// holds only per-connection state (the handle table); the store, event
// bus, session manager, and staleness tracker are shared across every
// connection the server accepts.
type FS struct {
	Store    store.Client
	Logger   log.Logger
	Bus      *events.Bus
	Sessions *session.Manager
	Tracker  *namespace.Tracker
	Handles  *handles.Table

	User         models.User
	UserBasePath string
	MaxFileSize  int64
}

// New returns a per-connection FS. bus, sessions, and tracker are expected
// to be shared singletons constructed once for the whole server. A zero
// maxFileSize means uploads are not size-limited.
func New(cli store.Client, logger log.Logger, bus *events.Bus, sessions *session.Manager, tracker *namespace.Tracker, user models.User, userBasePath string, maxFileSize int64) *FS {
	return &FS{
		Store:        cli,
		Logger:       logger,
		Bus:          bus,
		Sessions:     sessions,
		Tracker:      tracker,
		Handles:      handles.New(),
		User:         user,
		UserBasePath: userBasePath,
		MaxFileSize:  maxFileSize,
	}
}

func (f *FS) homePrefix() string {
	return f.User.HomePrefix(f.UserBasePath)
}

// resolve normalizes a wire path into its virtual form and the object key
// it maps to under the user's home prefix.
func (f *FS) resolve(raw string) (virtual, key string) {
	virtual = vpath.Normalize(raw)
	key = vpath.Map(f.homePrefix(), virtual)
	return virtual, key
}

func (f *FS) admitted(virtual string) bool {
	return policy.Admitted(f.User.Username, f.User.AllowedPrefixes, virtual)
}

// can reports whether the user's account holds capability cap. A zero
// Capabilities mask means "use the default grant," not "grant nothing."
func (f *FS) can(cap string) bool {
	mask := f.User.Capabilities
	if mask == 0 {
		mask = policy.SerializeCapabilities(policy.DefaultCapabilities)
	}
	return policy.Can(mask, cap)
}

func (f *FS) recordActivity() {
	if f.Sessions != nil {
		f.Sessions.RecordActivity(f.User.Username)
	}
}

func (f *FS) emit(kind events.Kind, virtual string, modify func(*events.Event)) {
	if f.Bus == nil {
		return
	}
	ev := events.Event{Kind: kind, Time: time.Now(), Username: f.User.Username, Path: virtual}
	if modify != nil {
		modify(&ev)
	}
	f.Bus.Emit(ev)
}

func (f *FS) clientError(virtual string, err error) {
	f.emit(events.ClientError, virtual, func(ev *events.Event) { ev.Err = err })
}

// Fileread opens an object for download. It LISTs using the object key as
// a prefix rather than a plain HEAD so a ".directory" marker or nested key
// sharing the prefix is detected and rejected as NO_SUCH_FILE, the same
// distinction the namespace view draws between files and directories.
func (f *FS) Fileread(request *sftp.Request) (io.ReaderAt, error) {
	f.recordActivity()
	virtual, key := f.resolve(request.Filepath)

	if !f.admitted(virtual) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}
	if !f.can(policy.CapReadContent) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}

	ctx := context.Background()
	summaries, err := f.Store.List(ctx, key)
	if err != nil {
		f.Logger.Error("list for read failed", "user", f.User.Username, "key", key, "err", err)
		f.clientError(virtual, err)
		return nil, sftp.ErrSshFxFailure
	}

	size, ok, isDir := classifyExact(summaries, key)
	if !ok || isDir {
		return nil, sftp.ErrSshFxNoSuchFile
	}

	h := download.NewHandle(ctx, f.Store, key, size)
	wire := f.Handles.Allocate(handles.KindFileRead, key)
	f.emit(events.FileDownloaded, virtual, func(ev *events.Event) { ev.Size = size })
	return &readCloser{Handle: h, fs: f, wire: wire}, nil
}

// readCloser tracks an open download in the per-connection handle table
// for the lifetime of the client's read, releasing it when
// github.com/pkg/sftp closes the cached ReaderAt at CLOSE.
type readCloser struct {
	*download.Handle
	fs   *FS
	wire []byte
}

func (r *readCloser) Close() error {
	if key, err := r.fs.Handles.Lookup(r.wire, handles.KindFileRead); err == nil {
		r.fs.Logger.Debug("closing read handle", "user", r.fs.User.Username, "key", key)
	}
	r.fs.Handles.Release(r.wire)
	return nil
}

// Filewrite opens an object for upload. Admission, the ledgers/invoices
// PDF-only rule, and the account's create/update capability are all
// checked before a buffer is even allocated; the CLOSE-time commit repeats
// the empty-file and PDF checks as a last line of defense.
func (f *FS) Filewrite(request *sftp.Request) (io.WriterAt, error) {
	f.recordActivity()
	virtual, key := f.resolve(request.Filepath)

	if !f.admitted(virtual) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}
	if !f.can(policy.CapCreate) && !f.can(policy.CapUpdate) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}
	if !policy.AllowsWrite(f.User.Username, virtual) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}

	h := upload.NewHandle()
	h.MaxSize = f.MaxFileSize
	h.OnNonMonotonicWrite = func(got, want int64) {
		f.Logger.Warn("non-monotonic write offset, treating as append",
			"user", f.User.Username, "path", virtual, "got", got, "want", want)
	}
	requirePDF := policy.RequiresPDF(f.User.Username, virtual)
	wire := f.Handles.Allocate(handles.KindFileWrite, key)
	return &writeCloser{Handle: h, fs: f, virtual: virtual, key: key, requirePDF: requirePDF, wire: wire}, nil
}

// writeCloser adapts upload.Handle to io.Closer so github.com/pkg/sftp's
// CLOSE handling (which invokes Close on the cached WriterAt if present)
// is the trigger for the commit PUT, blocking the client's CLOSE response
// on that PUT.
type writeCloser struct {
	*upload.Handle
	fs         *FS
	virtual    string
	key        string
	requirePDF bool
	wire       []byte
}

func (w *writeCloser) Close() error {
	if key, err := w.fs.Handles.Lookup(w.wire, handles.KindFileWrite); err == nil {
		w.fs.Logger.Debug("closing write handle", "user", w.fs.User.Username, "key", key)
	}
	defer w.fs.Handles.Release(w.wire)

	ctx := context.Background()
	go w.Handle.Commit(ctx, w.fs.Store, w.key, w.requirePDF)
	err := w.Handle.Wait(ctx)
	if err != nil {
		var quota upload.ErrQuotaExceeded
		if errors.As(err, &quota) {
			w.fs.Logger.Warn("upload rejected by quota check",
				"user", w.fs.User.Username, "path", w.virtual, "limit", quota.Limit, "fx_code", upload.FxQuotaExceeded)
		}
		w.fs.emit(events.UploadError, w.virtual, func(ev *events.Event) { ev.Err = err })
		return sftp.ErrSshFxFailure
	}
	w.fs.Tracker.MarkUploaded()
	size := int64(w.Handle.Len())
	w.fs.emit(events.FileUploaded, w.virtual, func(ev *events.Event) { ev.Size = size })
	w.fs.emit(events.DirectoryChanged, path.Dir(w.virtual), nil)
	return nil
}

// Filecmd handles REMOVE, RENAME, SETSTAT, MKDIR, and RMDIR. MKDIR and
// RMDIR are unconditionally rejected, since the system, not the client,
// owns directory layout, and REMOVE/RENAME additionally check the
// protected-path rule before touching the store.
func (f *FS) Filecmd(request *sftp.Request) error {
	f.recordActivity()
	virtual, key := f.resolve(request.Filepath)
	ctx := context.Background()

	switch request.Method {
	case "Mkdir":
		f.emit(events.DirectoryCreationBlocked, virtual, nil)
		return sftp.ErrSshFxPermissionDenied

	case "Rmdir":
		f.emit(events.DirectoryDeletionBlocked, virtual, nil)
		return sftp.ErrSshFxPermissionDenied

	case "Remove":
		if !f.admitted(virtual) {
			return sftp.ErrSshFxPermissionDenied
		}
		if policy.IsProtected(f.User.Username, virtual) {
			f.emit(events.ProtectedDirectoryDeletionBlocked, virtual, nil)
			return sftp.ErrSshFxPermissionDenied
		}
		if !f.can(policy.CapDelete) {
			return sftp.ErrSshFxPermissionDenied
		}
		if err := f.Store.Delete(ctx, key); err != nil {
			f.Logger.Error("delete failed", "user", f.User.Username, "key", key, "err", err)
			return sftp.ErrSshFxFailure
		}
		f.emit(events.FileDeleted, virtual, nil)
		return sftp.ErrSshFxOk

	case "Rename":
		targetVirtual, targetKey := f.resolve(request.Target)
		if !f.admitted(virtual) || !f.admitted(targetVirtual) {
			return sftp.ErrSshFxPermissionDenied
		}
		if policy.IsProtected(f.User.Username, virtual) || policy.IsProtected(f.User.Username, targetVirtual) {
			f.emit(events.ProtectedDirectoryRenameBlocked, virtual, func(ev *events.Event) { ev.Target = targetVirtual })
			return sftp.ErrSshFxPermissionDenied
		}
		if !f.can(policy.CapUpdate) {
			return sftp.ErrSshFxPermissionDenied
		}
		if err := f.Store.Copy(ctx, key, targetKey); err != nil {
			f.Logger.Error("rename copy failed", "user", f.User.Username, "src", key, "dst", targetKey, "err", err)
			return sftp.ErrSshFxFailure
		}
		if err := f.Store.Delete(ctx, key); err != nil {
			f.Logger.Error("rename cleanup delete failed", "user", f.User.Username, "key", key, "err", err)
			return sftp.ErrSshFxFailure
		}
		f.emit(events.FileRenamed, virtual, func(ev *events.Event) { ev.Target = targetVirtual })
		return sftp.ErrSshFxOk

	case "Setstat":
		if !f.admitted(virtual) {
			return sftp.ErrSshFxPermissionDenied
		}
		// The store has no file-mode concept to change; admission is the
		// only check that applies, and the request otherwise succeeds.
		return sftp.ErrSshFxOk

	default:
		return sftp.ErrSshFxOpUnsupported
	}
}

// Filelist handles OPENDIR/READDIR (request.Method "List") and STAT/LSTAT
// (request.Method "Stat"/"Lstat").
func (f *FS) Filelist(request *sftp.Request) (sftp.ListerAt, error) {
	f.recordActivity()
	virtual, key := f.resolve(request.Filepath)

	if !f.admitted(virtual) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}
	if !f.can(policy.CapRead) {
		f.clientError(virtual, sftp.ErrSshFxPermissionDenied)
		return nil, sftp.ErrSshFxPermissionDenied
	}

	ctx := context.Background()
	switch request.Method {
	case "List":
		entries, err := f.listEntries(ctx, virtual, key)
		if err != nil {
			return nil, err
		}
		infos := make([]os.FileInfo, len(entries))
		for i, e := range entries {
			infos[i] = entryFileInfo(e)
		}
		return listerAt(infos), nil

	case "Stat", "Lstat":
		info, err := f.statEntry(ctx, virtual, key)
		if err != nil {
			return nil, err
		}
		return listerAt([]os.FileInfo{info}), nil

	default:
		return nil, sftp.ErrSshFxOpUnsupported
	}
}

// listEntries materializes the visible children of virtual. The
// synthetic root is returned without any store call; every other
// directory consults the staleness tracker before listing.
func (f *FS) listEntries(ctx context.Context, virtual, key string) ([]namespace.Entry, error) {
	if virtual == "/" {
		return namespace.VirtualRootEntries(f.User.Username, time.Now()), nil
	}

	if f.Tracker.RecentlyUploaded() {
		time.Sleep(namespace.RecheckDelay)
	}

	summaries, err := f.Store.List(ctx, key+"/")
	if err != nil {
		f.Logger.Error("list failed", "user", f.User.Username, "key", key, "err", err)
		return nil, sftp.ErrSshFxFailure
	}
	keys := make([]namespace.Key, len(summaries))
	for i, s := range summaries {
		keys[i] = namespace.Key{Key: s.Key, Size: s.Size, ModTime: s.LastModified}
	}
	return namespace.View(key, keys), nil
}

// statEntry classifies a single virtual path the same way the namespace
// view classifies directory children, but against a targeted LIST of just
// that key's own prefix.
func (f *FS) statEntry(ctx context.Context, virtual, key string) (os.FileInfo, error) {
	if virtual == "/" {
		return entryFileInfo(namespace.Entry{Name: ".", IsDir: true, ModTime: time.Now()}), nil
	}

	summaries, err := f.Store.List(ctx, key)
	if err != nil {
		f.Logger.Error("stat list failed", "user", f.User.Username, "key", key, "err", err)
		return nil, sftp.ErrSshFxFailure
	}

	var (
		found   bool
		isDir   bool
		size    int64
		modTime time.Time
	)
	for _, s := range summaries {
		switch {
		case s.Key == key:
			found = true
			size = s.Size
			modTime = s.LastModified
		case s.Key == key+"/.directory", s.Key == key+"/.dir":
			found = true
			isDir = true
			modTime = s.LastModified
		case strings.HasPrefix(s.Key, key+"/"):
			found = true
			isDir = true
		}
	}
	if !found {
		return nil, sftp.ErrSshFxNoSuchFile
	}
	return entryFileInfo(namespace.Entry{Name: path.Base(virtual), IsDir: isDir, Size: size, ModTime: modTime}), nil
}

// RealPath implements github.com/pkg/sftp's optional RealPathFileLister
// interface. Because FS already satisfies FileLister, the request server
// detects this method on the value wired as Handlers.FileList and routes
// SSH_FXP_REALPATH through it instead of its own pure path-cleaning
// default. It normalizes the raw wire path the same way every other
// method does, then confirms existence with the same LIST-based check
// statEntry uses for Stat/Lstat; a client that realpaths a target and
// immediately stats the result still gets NO_SUCH_FILE from that
// follow-up Stat dispatch, since RealPath's interface offers no error
// return to short-circuit the response itself.
func (f *FS) RealPath(raw string) string {
	virtual, key := f.resolve(raw)
	if _, err := f.statEntry(context.Background(), virtual, key); err != nil {
		f.Logger.Debug("realpath resolved to a nonexistent target", "user", f.User.Username, "virtual", virtual)
	}
	return virtual
}

// classifyExact reports the size of the summary whose key equals exactly
// key, and whether any summary indicates key is really a directory (a
// ".directory" marker or a nested object under key/).
func classifyExact(summaries []store.ObjectSummary, key string) (size int64, found, isDir bool) {
	for _, s := range summaries {
		switch {
		case s.Key == key:
			found = true
			size = s.Size
		case s.Key == key+"/.directory", strings.HasPrefix(s.Key, key+"/"):
			isDir = true
		}
	}
	return size, found, isDir
}
