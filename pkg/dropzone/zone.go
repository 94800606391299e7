package dropzone

import (
	"log/slog"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/reactive"
)

// ErrRejected is returned when no dropped item passes the allow-list.
var ErrRejected = errors.New("E040")

// ZoneConfig configures a Zone.
type ZoneConfig struct {
	// Accept is the allow-list. Default: DefaultAccept.
	Accept Accept

	// OnSelect is called after a new file replaces the selection.
	OnSelect func(*File)

	// Logger is used for diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// Zone is a single-slot drop target.
type Zone struct {
	accept   Accept
	onSelect func(*File)
	logger   *slog.Logger

	selected   *reactive.Signal[*File]
	dragActive *reactive.Signal[bool]
}

// NewZone creates an empty Zone.
func NewZone(cfg ZoneConfig) *Zone {
	if cfg.Accept == nil {
		cfg.Accept = DefaultAccept
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Zone{
		accept:     cfg.Accept,
		onSelect:   cfg.OnSelect,
		logger:     cfg.Logger,
		selected:   reactive.NewSignal[*File](nil),
		dragActive: reactive.NewSignal(false),
	}
}

// Drop offers files to the zone. The first file that passes the allow-list
// replaces the current selection; the rest are ignored. When nothing passes,
// the selection is left untouched and ErrRejected is returned.
func (z *Zone) Drop(files ...*File) (*File, error) {
	z.dragActive.Set(false)

	var picked *File
	for _, f := range files {
		if f == nil {
			continue
		}
		if !z.accept.Allows(f.Name, f.ContentType) {
			z.logger.Debug("file rejected", "name", f.Name, "content_type", f.ContentType)
			continue
		}
		if picked == nil {
			picked = f
		}
	}
	if picked == nil {
		return nil, ErrRejected
	}

	prev := z.selected.Get()
	z.selected.Set(picked)
	if prev != nil && prev != picked {
		if err := prev.Release(); err != nil {
			z.logger.Warn("release replaced file", "name", prev.Name, "error", err)
		}
	}

	z.logger.Debug("file selected", "name", picked.Name, "size", picked.Size)
	if z.onSelect != nil {
		z.onSelect(picked)
	}
	return picked, nil
}

// Selected returns the current selection, or nil.
func (z *Zone) Selected() *File {
	return z.selected.Get()
}

// SetDragActive records whether a drag is hovering over the zone.
func (z *Zone) SetDragActive(active bool) {
	z.dragActive.Set(active)
}

// DragActive reports whether a drag is hovering over the zone.
func (z *Zone) DragActive() bool {
	return z.dragActive.Get()
}

// Accept returns the zone's allow-list.
func (z *Zone) Accept() Accept {
	return z.accept
}

// Subscribe runs fn after any change to the selection or the drag state.
func (z *Zone) Subscribe(fn func()) func() {
	return reactive.Watch(fn, z.selected, z.dragActive)
}

// Close releases the selected file's staged storage.
func (z *Zone) Close() {
	if f := z.selected.Get(); f != nil {
		if err := f.Release(); err != nil {
			z.logger.Warn("release selected file", "name", f.Name, "error", err)
		}
	}
}
