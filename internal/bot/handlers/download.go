package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"

	"github.com/knowbot/knowbot/internal/extract"
)

const (
	fileDownloadTimeout = 30 * time.Second
	aiProcessingTimeout = 2 * time.Minute
	sendMessageTimeout  = 10 * time.Second

	maxDownloadSize = 10 * 1024 * 1024
)

// DownloadFile downloads a file from Telegram's API using the provided file ID.
// It returns the file data and any error encountered.
func DownloadFile(ctx context.Context, b *bot.Bot, token, fileID string) (data []byte, err error) {
	if token == "" {
		return nil, fmt.Errorf("empty token provided for file download")
	}
	if fileID == "" {
		return nil, fmt.Errorf("empty fileID provided for file download")
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled before file download: %w", ctx.Err())
	}

	downloadCtx, cancel := context.WithTimeout(ctx, fileDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("nil HTTP response received")
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty file data")
	}

	return data, nil
}

// botDownloader adapts DownloadFile to the extraction pipeline's interface.
type botDownloader struct {
	b     *bot.Bot
	token string
}

// NewDownloader returns a file downloader bound to the given bot instance.
func NewDownloader(b *bot.Bot, token string) extract.Downloader {
	return botDownloader{b: b, token: token}
}

func (d botDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	return DownloadFile(ctx, d.b, d.token, fileID)
}
