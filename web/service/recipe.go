package service

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"recipe-box/logger"
	"recipe-box/util/common"
)

// searchLimit caps every search at ten results, matching what the home page renders.
const searchLimit = 10

// ErrRecipeNotFound reports that the recipe API has no recipe with the requested id.
var ErrRecipeNotFound = errors.New("recipe not found")

// Upstream API health, shared across service instances. The probe job drives
// the healthy flag; every request feeds the counters.
var (
	apiHealthy   = atomic.NewBool(true)
	apiRequests  = atomic.NewUint64(0)
	apiFailures  = atomic.NewUint64(0)
	apiLastProbe = atomic.NewInt64(0)
)

// Recipe is the slice of the upstream recipe document the pages render.
type Recipe struct {
	Id             int          `json:"id"`
	Title          string       `json:"title"`
	Image          string       `json:"image"`
	ReadyInMinutes int          `json:"readyInMinutes"`
	Servings       int          `json:"servings"`
	SourceUrl      string       `json:"sourceUrl"`
	Summary        string       `json:"summary"`
	Instructions   string       `json:"instructions"`
	HealthScore    float64      `json:"healthScore"`
	Ingredients    []Ingredient `json:"extendedIngredients"`
}

type Ingredient struct {
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

type searchResponse struct {
	Results      []Recipe `json:"results"`
	TotalResults int      `json:"totalResults"`
}

// RecipeApiHealth is a snapshot of the upstream API state for the status page.
type RecipeApiHealth struct {
	Healthy   bool   `json:"healthy"`
	Requests  uint64 `json:"requests"`
	Failures  uint64 `json:"failures"`
	LastProbe int64  `json:"lastProbe"`
}

// RecipeService queries the recipe API. Failures during search degrade to an
// empty result list so the pages stay up while the upstream is not available.
type RecipeService struct {
	SettingService
}

// SearchRecipes returns up to ten recipes matching the query. Any upstream
// failure is logged and yields an empty list, never an error page.
func (s *RecipeService) SearchRecipes(query string) []Recipe {
	apiURL, apiKey, err := s.apiTarget()
	if err != nil {
		logger.Warning("recipe search unavailable:", err)
		return nil
	}

	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("query", query)
	params.Set("number", strconv.Itoa(searchLimit))
	params.Set("instructionsRequired", "true")
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")

	body, status, err := s.get(apiURL + "/recipes/complexSearch?" + params.Encode())
	if err != nil {
		logger.Warningf("recipe search %q failed: %v", query, err)
		return nil
	}
	if status != http.StatusOK {
		logger.Warningf("recipe search %q rejected by API with status %d", query, status)
		return nil
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		logger.Warningf("recipe search %q returned malformed data: %v", query, err)
		return nil
	}
	return result.Results
}

// GetRecipe fetches the full document for one recipe. Every view performs a
// fresh upstream request. A non-200 upstream answer maps to ErrRecipeNotFound;
// transport failures surface as-is.
func (s *RecipeService) GetRecipe(id int) (*Recipe, error) {
	apiURL, apiKey, err := s.apiTarget()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", apiKey)

	body, status, err := s.get(fmt.Sprintf("%s/recipes/%d/information?%s", apiURL, id, params.Encode()))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		logger.Debugf("recipe %d lookup returned status %d", id, status)
		return nil, ErrRecipeNotFound
	}

	recipe := &Recipe{}
	if err := json.Unmarshal(body, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Ping probes the API with a minimal search and records the outcome for the
// status page.
func (s *RecipeService) Ping() error {
	apiURL, apiKey, err := s.apiTarget()
	if err != nil {
		recordProbe(false)
		return err
	}

	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("query", "egg")
	params.Set("number", "1")

	_, status, err := s.get(apiURL + "/recipes/complexSearch?" + params.Encode())
	if err != nil {
		recordProbe(false)
		return err
	}
	if status != http.StatusOK {
		recordProbe(false)
		return common.NewErrorf("recipe API probe got status %v", status)
	}
	recordProbe(true)
	return nil
}

// ApiHealth returns the current upstream health snapshot.
func (s *RecipeService) ApiHealth() RecipeApiHealth {
	return RecipeApiHealth{
		Healthy:   apiHealthy.Load(),
		Requests:  apiRequests.Load(),
		Failures:  apiFailures.Load(),
		LastProbe: apiLastProbe.Load(),
	}
}

// get performs one upstream request. The returned error covers transport and
// read failures only; HTTP status handling is left to the caller.
func (s *RecipeService) get(requestURL string) ([]byte, int, error) {
	apiRequests.Inc()

	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		apiFailures.Inc()
		return nil, 0, err
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		apiFailures.Inc()
		return nil, 0, err
	}
	defer resp.Body.Close()

	buffer := &bytes.Buffer{}
	_, err = buffer.ReadFrom(resp.Body)
	if err != nil {
		apiFailures.Inc()
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		apiFailures.Inc()
	}
	return buffer.Bytes(), resp.StatusCode, nil
}

func (s *RecipeService) apiTarget() (string, string, error) {
	apiURL, err := s.SettingService.GetRecipeApiURL()
	if err != nil {
		return "", "", err
	}
	apiKey, err := s.SettingService.GetRecipeApiKey()
	if err != nil {
		return "", "", err
	}
	if apiKey == "" {
		return "", "", errors.New("recipe API key is not configured")
	}
	return strings.TrimSuffix(apiURL, "/"), apiKey, nil
}

// recordProbe stores the probe outcome and logs reachability transitions, so
// an outage shows up in the logs even when nobody is searching.
func recordProbe(ok bool) {
	was := apiHealthy.Swap(ok)
	if was != ok {
		if ok {
			logger.Info("recipe API is reachable again")
		} else {
			logger.Warning("recipe API became unreachable")
		}
	}
	apiLastProbe.Store(time.Now().Unix())
}
