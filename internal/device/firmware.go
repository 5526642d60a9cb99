package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/transport"
)

// DefaultPollInterval is how often WaitForDownload queries the device
const DefaultPollInterval = time.Second

// ErrNoDownloadState is returned when the device answers get_download_state
// without a result block
var ErrNoDownloadState = errors.New("device did not report a download state")

// WaitForDownload polls get_download_state until the device reports a
// complete download, rejects the query, or ctx is done. progress is called
// after every successful poll and may be nil.
//
// A poll that fails with a retryable transport error is logged and retried
// on the next tick.
func (d Device) WaitForDownload(ctx context.Context, interval time.Duration, progress func(*DownloadState)) (*DownloadState, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := d.pollDownload()
		switch {
		case err == nil:
			if progress != nil {
				progress(state)
			}
			if state.Percent() >= 100 {
				return state, nil
			}
		case transport.IsRetryable(err):
			logging.Debug("Download state poll failed, retrying",
				zap.String("address", d.address),
				zap.Error(err),
			)
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for firmware download: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (d Device) pollDownload() (*DownloadState, error) {
	resp, err := d.DownloadState()
	if err != nil {
		return nil, err
	}
	state := resp.SystemResult().GetDownloadState
	if state == nil {
		return nil, ErrNoDownloadState
	}
	if err := state.Err(); err != nil {
		return nil, err
	}
	return state, nil
}
