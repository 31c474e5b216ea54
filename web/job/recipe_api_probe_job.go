package job

import (
	"recipe-box/logger"
	"recipe-box/web/service"
)

// RecipeApiProbeJob checks that the upstream recipe API still answers. The
// outcome feeds the health flag shown on the status page.
type RecipeApiProbeJob struct {
	recipeService service.RecipeService
}

func NewRecipeApiProbeJob() *RecipeApiProbeJob {
	return new(RecipeApiProbeJob)
}

// Run probes the recipe API once.
func (j *RecipeApiProbeJob) Run() {
	if err := j.recipeService.Ping(); err != nil {
		logger.Warning("recipe API probe failed:", err)
		return
	}
	logger.Debug("recipe API probe ok")
}
