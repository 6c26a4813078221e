package hotels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const defaultBaseURL = "https://data.xotelo.com/api"

// XoteloProvider implements hotel search on the Xotelo rates API
type XoteloProvider struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure XoteloProvider implements HotelProvider
var _ providers.HotelProvider = (*XoteloProvider)(nil)

// NewXoteloProvider creates a new Xotelo hotel provider
func NewXoteloProvider(baseURL string) *XoteloProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewXoteloProviderWithOptions(baseURL, &http.Client{
		Timeout: 15 * time.Second,
	})
}

// NewXoteloProviderWithOptions creates a provider pointed at a custom
// endpoint, used by tests
func NewXoteloProviderWithOptions(baseURL string, httpClient *http.Client) *XoteloProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &XoteloProvider{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type xoteloHotel struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Rate     float64  `json:"rate"`
	Rating   *float64 `json:"rating,omitempty"`
	Features []string `json:"features,omitempty"`
}

type xoteloResponse struct {
	Error  *string `json:"error"`
	Result struct {
		List []xoteloHotel `json:"list"`
	} `json:"result"`
}

// SearchHotels searches hotels for a stay
func (p *XoteloProvider) SearchHotels(ctx context.Context, city string, checkIn, checkOut time.Time) ([]entities.Hotel, error) {
	params := url.Values{}
	params.Set("location", city)
	params.Set("chk_in", checkIn.Format("2006-01-02"))
	params.Set("chk_out", checkOut.Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s/rates?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError("hotel request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("hotel request failed with status %d", resp.StatusCode), nil,
		)
	}

	var envelope xoteloResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Error != nil {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("hotel request failed: %s", *envelope.Error), nil,
		)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	hotels := make([]entities.Hotel, 0, len(envelope.Result.List))
	for _, h := range envelope.Result.List {
		hotels = append(hotels, entities.Hotel{
			Name:          h.Name,
			Address:       h.Address,
			PricePerNight: h.Rate,
			TotalPrice:    h.Rate * float64(nights),
			Rating:        h.Rating,
			Amenities:     h.Features,
		})
	}

	return hotels, nil
}
