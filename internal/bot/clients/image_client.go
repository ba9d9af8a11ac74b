package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-hhh-bot/internal/common/httputil"
	"github.com/central-university-dev/go-hhh-bot/internal/config"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
)

const (
	imageSize            = "512x512"
	imageGenerationsPath = "/v1/images/generations"
)

type imageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// ImageClient generates chat thumbnails through an OpenAI-compatible images API.
type ImageClient struct {
	client          *resty.Client
	baseURL         string
	apiKey          string
	downloadTimeout time.Duration
	logger          *slog.Logger
}

func NewImageClient(cfg *config.Config, logger *slog.Logger) *ImageClient {
	return &ImageClient{
		client:          httputil.CreateResilientHTTPClient(httputil.SettingsFromConfig(cfg), logger, "image_service"),
		baseURL:         strings.TrimRight(cfg.ImageAPIBaseURL, "/"),
		apiKey:          cfg.ImageAPIKey,
		downloadTimeout: cfg.ImageDownloadTimeout,
		logger:          logger,
	}
}

// GenerateImage returns PNG bytes for title. A nil slice with a nil error
// means the provider refused the prompt.
func (c *ImageClient) GenerateImage(ctx context.Context, title string) ([]byte, error) {
	c.logger.Debug("Генерация изображения", "title", title)

	var result imageResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(imageRequest{Prompt: title, N: 1, Size: imageSize, ResponseFormat: "url"}).
		SetResult(&result).
		Post(c.baseURL + imageGenerationsPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе генерации изображения: %w", err)
	}

	if resp.StatusCode() == http.StatusBadRequest {
		c.logger.Debug("Провайдер отклонил запрос генерации", "title", title, "body", resp.String())
		return nil, nil
	}

	if resp.IsError() {
		return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return nil, &customerrors.ErrInvalidArgument{Message: "пустой ответ генерации изображения"}
	}

	downloadCtx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	image, err := c.client.R().SetContext(downloadCtx).Get(result.Data[0].URL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при загрузке изображения: %w", err)
	}

	if image.IsError() {
		return nil, &customerrors.HTTPError{StatusCode: image.StatusCode()}
	}

	return image.Body(), nil
}
