package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubRecipeApi serves a fixed catalog in the shape of the upstream API.
func stubRecipeApi(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/recipes/complexSearch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("query") == "" {
			w.Write([]byte(`{"results":[],"totalResults":0}`))
			return
		}
		w.Write([]byte(`{
			"results": [
				{"id": 101, "title": "Spaghetti Carbonara", "image": "https://img.example.com/101.jpg", "readyInMinutes": 25, "servings": 4},
				{"id": 102, "title": "Pasta Primavera", "image": "https://img.example.com/102.jpg", "readyInMinutes": 35, "servings": 2}
			],
			"totalResults": 2
		}`))
	})

	mux.HandleFunc("/recipes/101/information", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 101,
			"title": "Spaghetti Carbonara",
			"readyInMinutes": 25,
			"servings": 4,
			"sourceUrl": "https://example.com/carbonara",
			"summary": "A <b>classic</b> Roman pasta.",
			"instructions": "Boil pasta. Fry guanciale. Combine.",
			"healthScore": 22.5,
			"extendedIngredients": [
				{"name": "spaghetti", "original": "400g spaghetti", "amount": 400, "unit": "g"},
				{"name": "guanciale", "original": "150g guanciale", "amount": 150, "unit": "g"}
			]
		}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func pointRecipeServiceAt(t *testing.T, url string) RecipeService {
	settingService := SettingService{}
	assert.NoError(t, settingService.SetRecipeApiURL(url))
	assert.NoError(t, settingService.SetRecipeApiKey("test-key"))
	return RecipeService{}
}

func TestSearchRecipes(t *testing.T) {
	setup()
	defer teardown()

	stub := stubRecipeApi(t)
	service := pointRecipeServiceAt(t, stub.URL)

	recipes := service.SearchRecipes("pasta")
	assert.Len(t, recipes, 2)
	assert.Equal(t, 101, recipes[0].Id)
	assert.Equal(t, "Spaghetti Carbonara", recipes[0].Title)
	assert.Equal(t, 25, recipes[0].ReadyInMinutes)
	assert.Equal(t, 4, recipes[0].Servings)
}

func TestSearchRecipesEmptyQueryStillAsksApi(t *testing.T) {
	setup()
	defer teardown()

	hits := 0
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.True(t, r.URL.Query().Has("query"))
		w.Write([]byte(`{"results":[],"totalResults":0}`))
	}))
	t.Cleanup(stub.Close)

	service := pointRecipeServiceAt(t, stub.URL)

	recipes := service.SearchRecipes("")
	assert.Empty(t, recipes)
	assert.Equal(t, 1, hits)
}

func TestSearchRecipesDegradesOnFailure(t *testing.T) {
	setup()
	defer teardown()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	t.Cleanup(stub.Close)

	service := pointRecipeServiceAt(t, stub.URL)
	assert.Empty(t, service.SearchRecipes("pasta"))
}

func TestSearchRecipesWithoutKey(t *testing.T) {
	setup()
	defer teardown()

	// No key configured at all: degrade to empty, never panic
	service := RecipeService{}
	assert.Empty(t, service.SearchRecipes("pasta"))
}

func TestGetRecipe(t *testing.T) {
	setup()
	defer teardown()

	stub := stubRecipeApi(t)
	service := pointRecipeServiceAt(t, stub.URL)

	recipe, err := service.GetRecipe(101)
	assert.NoError(t, err)
	assert.Equal(t, "Spaghetti Carbonara", recipe.Title)
	assert.Equal(t, "https://example.com/carbonara", recipe.SourceUrl)
	assert.InDelta(t, 22.5, recipe.HealthScore, 0.001)
	assert.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "400g spaghetti", recipe.Ingredients[0].Original)

	// Unknown id maps to the not-found sentinel
	_, err = service.GetRecipe(999)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

// Every detail view hits the upstream; nothing is cached in between.
func TestGetRecipeAlwaysAsksUpstream(t *testing.T) {
	setup()
	defer teardown()

	hits := 0
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"id": 55, "title": "Fresh Stew"}`))
	}))
	t.Cleanup(stub.Close)

	service := pointRecipeServiceAt(t, stub.URL)

	_, err := service.GetRecipe(55)
	assert.NoError(t, err)
	_, err = service.GetRecipe(55)
	assert.NoError(t, err)

	assert.Equal(t, 2, hits)
}

func TestPingTracksHealth(t *testing.T) {
	setup()
	defer teardown()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	service := pointRecipeServiceAt(t, bad.URL)
	assert.Error(t, service.Ping())
	assert.False(t, service.ApiHealth().Healthy)

	good := stubRecipeApi(t)
	service = pointRecipeServiceAt(t, good.URL)
	assert.NoError(t, service.Ping())

	health := service.ApiHealth()
	assert.True(t, health.Healthy)
	assert.NotZero(t, health.LastProbe)
	assert.NotZero(t, health.Requests)
}
