package reader_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mediaprobe/reader"
	"github.com/ugparu/mediaprobe/utils"
)

func streamJob(data []byte) reader.Job {
	return reader.Job{
		Open: func(context.Context) (reader.Source, error) {
			return reader.NewStreamSource(bytes.NewReader(data)), nil
		},
		CanSkipVideoData: true,
		Options:          reader.Options{ChunkSize: 1024},
	}
}

func TestPoolSubmit(t *testing.T) {
	t.Parallel()

	pool, err := reader.NewPool(3)
	require.NoError(t, err)
	defer pool.Close()

	data := testFile(true, 50_000)
	var wg sync.WaitGroup
	reports := make([]*reader.Report, 10)
	errs := make([]error, len(reports))
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = pool.Submit(context.Background(), streamJob(data))
		}()
	}
	wg.Wait()

	for i, report := range reports {
		require.NoError(t, errs[i])
		require.True(t, report.Complete)
		requireTracks(t, report)
	}
}

func TestPoolErrors(t *testing.T) {
	t.Parallel()

	pool, err := reader.NewPool(0)
	require.NoError(t, err)

	openErr := errors.New("no such source")
	_, err = pool.Submit(context.Background(), reader.Job{
		Open: func(context.Context) (reader.Source, error) { return nil, openErr },
	})
	require.ErrorIs(t, err, openErr)

	_, err = pool.Submit(context.Background(), reader.Job{
		Open: func(context.Context) (reader.Source, error) { panic("open") },
	})
	require.ErrorContains(t, err, "probe panicked")

	// The worker survives the panic.
	report, err := pool.Submit(context.Background(), streamJob(testFile(false, 0)))
	require.NoError(t, err)
	requireTracks(t, report)

	pool.Close()
	pool.Close()
	_, err = pool.Submit(context.Background(), streamJob(nil))
	var misuse *utils.ProtocolMisuseError
	require.ErrorAs(t, err, &misuse)
}

func TestPoolCancelled(t *testing.T) {
	t.Parallel()

	pool, err := reader.NewPool(1)
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pool.Submit(ctx, streamJob(testFile(false, 0)))
	var cancelled *utils.CancelledError
	require.ErrorAs(t, err, &cancelled)
	require.ErrorIs(t, err, context.Canceled)
}
