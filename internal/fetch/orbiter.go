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

// ServiceOrbiter names the Orbiter-style bridge data source.
const ServiceOrbiter = "orbiter"

// OrbiterClient fetches bridge activity from an Orbiter-style API.
type OrbiterClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	timeout    time.Duration
	store      cache.Store
	cacheTTL   time.Duration
	breaker    *circuitbreaker.Breaker
	now        func() time.Time
}

// NewOrbiterClient creates a new Orbiter API client backed by the given
// result store.
func NewOrbiterClient(cfg config.Config, store cache.Store) *OrbiterClient {
	return &OrbiterClient{
		baseURL:    cfg.OrbiterURL,
		httpClient: newRetryClient(cfg),
		apiKey:     getAPIKey(cfg, ServiceOrbiter),
		timeout:    cfg.RequestTimeout,
		store:      store,
		cacheTTL:   cfg.CacheTTL,
		breaker: circuitbreaker.New(ServiceOrbiter, circuitbreaker.Options{
			FailureThreshold: cfg.BreakerFailureThreshold,
			Cooldown:         cfg.BreakerCooldown,
		}),
		now: time.Now,
	}
}

// BreakerState exposes the circuit state for the status endpoint.
func (c *OrbiterClient) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}

// FetchBridgeActivity retrieves, validates and scores bridge activity for an
// address. Successful results are cached per address for the configured TTL.
func (c *OrbiterClient) FetchBridgeActivity(ctx context.Context, address string) (*model.ProtocolActivityResult, error) {
	if err := validateAddress(address, ServiceOrbiter); err != nil {
		return nil, err
	}

	key := cacheKey(ServiceOrbiter, address)
	if cached, ok := c.store.Get(key); ok {
		if res, ok := cached.(*model.ProtocolActivityResult); ok {
			logrus.WithField("address", address).Debug("Orbiter cache hit")
			return res, nil
		}
	}

	if !c.breaker.Allow() {
		return nil, circuitOpenError(ServiceOrbiter)
	}

	raw, err := c.fetchRaw(ctx, address)
	if err != nil {
		c.breaker.Failure()
		return nil, err
	}

	res, err := transform.BridgeActivity(raw, address, ServiceOrbiter)
	if err != nil {
		c.breaker.Failure()
		return nil, err
	}

	res.EligibilityScore = scoring.OrbiterScore(res, c.now())
	res.Tier = scoring.OrbiterTier(res.TotalVolume, res.TotalTransactions, res.UniqueChains)
	res.PercentileRank = scoring.PercentileRank(res.EligibilityScore)

	c.breaker.Success()
	c.store.Set(key, res, c.cacheTTL)

	logrus.WithFields(logrus.Fields{
		"address": address,
		"score":   res.EligibilityScore,
		"tier":    res.Tier,
	}).Debug("Orbiter activity fetched")

	return res, nil
}

// fetchRaw performs the HTTP call and returns the undecoded JSON value.
func (c *OrbiterClient) fetchRaw(ctx context.Context, address string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/bridge/activity/%s", c.baseURL, address)
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
		return nil, classifyTransportError(err, ServiceOrbiter)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, classifyStatus(resp.StatusCode, ServiceOrbiter)
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, model.NewAnalysisError(
			model.CodeMalformedPayload,
			"error decoding response: "+err.Error(),
			ServiceOrbiter,
			model.SeverityHigh,
			false,
		)
	}
	return raw, nil
}
