package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/history"
	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/types"
)

// Handle processes incoming IPC requests from the CLI.
func (d *Daemon) Handle(ctx context.Context, req *ipc.Request) *ipc.Response {
	d.logger.Debug("IPC request", zap.String("command", req.Command))

	switch req.Command {
	case ipc.CmdHistory:
		var args ipc.HistoryArgs
		if err := decodeArgs(req, &args); err != nil {
			return ipc.Error(err)
		}
		entries, err := d.history(args)
		if err != nil {
			return ipc.Error(err)
		}
		return ipc.OK(entries)

	case ipc.CmdPin, ipc.CmdUnpin, ipc.CmdDelete:
		var args ipc.IDArgs
		if err := decodeArgs(req, &args); err != nil {
			return ipc.Error(err)
		}
		id := types.ItemID(args.ID)
		var ok bool
		switch req.Command {
		case ipc.CmdPin:
			ok = d.store.Pin(id)
		case ipc.CmdUnpin:
			ok = d.store.Unpin(id)
		default:
			ok = d.store.Remove(id)
		}
		if !ok {
			return ipc.NotFound(fmt.Sprintf("no history entry with id %d", id))
		}
		return ipc.OK(nil)

	case ipc.CmdCopy:
		var args ipc.IDArgs
		if err := decodeArgs(req, &args); err != nil {
			return ipc.Error(err)
		}
		err := d.monitor.Copy(ctx, types.ItemID(args.ID))
		if errors.Is(err, history.ErrNotFound) {
			return ipc.NotFound(err.Error())
		}
		if err != nil {
			return ipc.Error(err)
		}
		return ipc.OK(nil)

	case ipc.CmdClear:
		return ipc.OK(ipc.ClearResult{Removed: d.store.ClearUnpinned()})

	case ipc.CmdFlush:
		if err := d.saver.Flush(ctx); err != nil {
			return ipc.Error(fmt.Errorf("failed to save history: %w", err))
		}
		return ipc.OK(nil)

	case ipc.CmdStatus:
		st := d.store.Stats()
		return ipc.OK(ipc.StatusInfo{
			PID:            os.Getpid(),
			StartedAt:      d.startedAt,
			Clipboard:      d.clip.Name(),
			StorageBackend: d.cfg.Storage.Backend,
			StoragePath:    d.cfg.StoragePath(),
			Entries:        st.Entries,
			Pinned:         st.Pinned,
			Capacity:       st.Capacity,
			UnpinnedBytes:  st.UnpinnedBytes,
		})
	}
	return ipc.Error(fmt.Errorf("unknown command: %q", req.Command))
}

func decodeArgs(req *ipc.Request, v any) error {
	if len(req.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Args, v); err != nil {
		return fmt.Errorf("invalid %s arguments: %w", req.Command, err)
	}
	return nil
}

func (d *Daemon) history(args ipc.HistoryArgs) ([]ipc.HistoryEntry, error) {
	filters := []history.Filter{history.Contains(args.Query)}
	if args.Kind != "" {
		kind, err := types.ParseKind(string(args.Kind))
		if err != nil {
			return nil, err
		}
		filters = append(filters, history.KindFilter(kind))
	}
	if args.Pinned {
		filters = append(filters, history.PinnedOnly)
	}
	if args.Regex != "" {
		f, err := history.RegexFilter(args.Regex)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	items := d.store.Snapshot(history.And(filters...))
	if args.Limit > 0 && len(items) > args.Limit {
		items = items[:args.Limit]
	}
	entries := make([]ipc.HistoryEntry, len(items))
	for i, it := range items {
		entries[i] = ipc.EntryFromItem(it)
	}
	return entries, nil
}
