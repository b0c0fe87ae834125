package routes

import (
	"net/http"

	"github.com/just-nibble/service-miner/internal/adapters/http/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(services *handlers.ServiceHandler, analysis *handlers.AnalysisHandler) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("GET /services", services.ListServices)
	router.HandleFunc("POST /services", services.AddService)
	router.HandleFunc("PUT /services/{name}/dates", services.UpdateDates)
	router.HandleFunc("DELETE /services/{name}", services.DeleteService)

	router.HandleFunc("GET /series/{kind}", analysis.GetSeries)
	router.HandleFunc("GET /defect-density", analysis.GetDefectDensity)
	router.HandleFunc("GET /changes-vs-defects", analysis.GetChangesVsDefects)
	router.HandleFunc("GET /repair-times", analysis.GetRepairTimes)
	router.HandleFunc("GET /repositories/{owner}/{name}/loc", analysis.GetRepositoryLoc)

	// Serve Swagger documentation
	router.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	return router
}
