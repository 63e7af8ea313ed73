package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-eligibility-ea/internal/cache"
	"github.com/yourorg/bridge-eligibility-ea/internal/circuitbreaker"
	"github.com/yourorg/bridge-eligibility-ea/internal/config"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
	"github.com/yourorg/bridge-eligibility-ea/internal/scoring"
	"github.com/yourorg/bridge-eligibility-ea/internal/transform"
)

// ServiceHop names the Hop-style bridge+LP data source.
const ServiceHop = "hop"

// HopClient fetches bridge and liquidity-provision activity from a Hop-style
// API.
type HopClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	timeout    time.Duration
	store      cache.Store
	cacheTTL   time.Duration
	breaker    *circuitbreaker.Breaker
}

// NewHopClient creates a new Hop API client backed by the given result store.
func NewHopClient(cfg config.Config, store cache.Store) *HopClient {
	return &HopClient{
		baseURL:    cfg.HopURL,
		httpClient: newRetryClient(cfg),
		apiKey:     getAPIKey(cfg, ServiceHop),
		timeout:    cfg.RequestTimeout,
		store:      store,
		cacheTTL:   cfg.CacheTTL,
		breaker: circuitbreaker.New(ServiceHop, circuitbreaker.Options{
			FailureThreshold: cfg.BreakerFailureThreshold,
			Cooldown:         cfg.BreakerCooldown,
		}),
	}
}

// BreakerState exposes the circuit state for the status endpoint.
func (c *HopClient) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}

// FetchBridgeLPActivity retrieves, validates and scores combined bridge and
// LP activity for an address. Successful results are cached per address.
func (c *HopClient) FetchBridgeLPActivity(ctx context.Context, address string) (*model.BridgeAndLPActivityResult, error) {
	if err := validateAddress(address, ServiceHop); err != nil {
		return nil, err
	}

	key := cacheKey(ServiceHop, address)
	if cached, ok := c.store.Get(key); ok {
		if res, ok := cached.(*model.BridgeAndLPActivityResult); ok {
			logrus.WithField("address", address).Debug("Hop cache hit")
			return res, nil
		}
	}

	if !c.breaker.Allow() {
		return nil, circuitOpenError(ServiceHop)
	}

	raw, err := c.fetchRaw(ctx, address)
	if err != nil {
		c.breaker.Failure()
		return nil, err
	}

	res, err := transform.BridgeAndLPActivity(raw, address, ServiceHop)
	if err != nil {
		c.breaker.Failure()
		return nil, err
	}

	bridgeScore, lpScore, combined := scoring.HopScores(&res.BridgeActivity, &res.LPActivity)
	res.EligibilityMetrics = model.EligibilityMetrics{
		BridgeScore:    bridgeScore,
		LPScore:        lpScore,
		CombinedScore:  combined,
		Tier:           scoring.HopTier(scoring.HopPoints(&res.BridgeActivity, &res.LPActivity)),
		PercentileRank: scoring.PercentileRank(combined),
		LPBonusMultiplier: scoring.LPBonusMultiplier(
			res.LPActivity.AveragePositionDuration,
			res.LPActivity.TotalLiquidityProvided,
		),
	}

	c.breaker.Success()
	c.store.Set(key, res, c.cacheTTL)

	logrus.WithFields(logrus.Fields{
		"address":  address,
		"combined": combined,
		"tier":     res.EligibilityMetrics.Tier,
	}).Debug("Hop activity fetched")

	return res, nil
}

// fetchRaw performs the HTTP call and returns the undecoded JSON value.
func (c *HopClient) fetchRaw(ctx context.Context, address string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/accounts/%s/activity", c.baseURL, address)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, ServiceHop)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, classifyStatus(resp.StatusCode, ServiceHop)
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, model.NewAnalysisError(
			model.CodeMalformedPayload,
			"error decoding response: "+err.Error(),
			ServiceHop,
			model.SeverityHigh,
			false,
		)
	}
	return raw, nil
}
