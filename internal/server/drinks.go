package server

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/internal/domain"
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/internal/metrics"
	"aggregat4/coffeeshop/internal/repository"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
)

type drinksResponse struct {
	Success bool               `json:"success"`
	Drinks  []domain.DrinkView `json:"drinks"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

func (controller *Controller) getDrinks(c echo.Context) error {
	drinks, err := controller.Store.ListDrinks()
	if err != nil {
		return errors.Wrap(err, "listing drinks")
	}
	views := make([]domain.DrinkView, len(drinks))
	for i, drink := range drinks {
		views[i] = drink.Short()
	}
	return c.JSON(http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

func (controller *Controller) getDrinksDetail(c echo.Context) error {
	drinks, err := controller.Store.ListDrinks()
	if err != nil {
		return errors.Wrap(err, "listing drinks")
	}
	views := make([]domain.DrinkView, len(drinks))
	for i, drink := range drinks {
		views[i] = drink.Long()
	}
	return c.JSON(http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

func (controller *Controller) createDrink(c echo.Context) error {
	body, err := readJsonBody(c, []string{"title", "recipe"}, true)
	if err != nil {
		return err
	}
	title, err := parseTitle(body["title"])
	if err != nil {
		return err
	}
	recipe, err := domain.ParseRecipe(body["recipe"])
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	existing, err := controller.Store.FindDrinkByTitle(title)
	if err != nil {
		return errors.Wrap(err, "looking up drink")
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict)
	}
	drink, err := controller.Store.CreateDrink(title, recipe)
	if errors.Is(err, repository.ErrDuplicateTitle) {
		return echo.NewHTTPError(http.StatusConflict)
	}
	if err != nil {
		return errors.Wrap(err, "creating drink")
	}
	metrics.RecordDrinkMutation("create")
	logging.Info(logger, "Drink {Id} created as {Title} by {Subject}", drink.Id, drink.Title, subject(c))
	return c.JSON(http.StatusOK, drinksResponse{Success: true, Drinks: []domain.DrinkView{drink.Long()}})
}

func (controller *Controller) updateDrink(c echo.Context) error {
	id, err := parseId(c)
	if err != nil {
		return err
	}
	body, err := readJsonBody(c, []string{"title", "recipe"}, false)
	if err != nil {
		return err
	}
	drink, err := controller.Store.FindDrink(id)
	if err != nil {
		return errors.Wrap(err, "looking up drink")
	}
	if drink == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if raw, ok := body["title"]; ok {
		title, err := parseTitle(raw)
		if err != nil {
			return err
		}
		other, err := controller.Store.FindDrinkByTitle(title)
		if err != nil {
			return errors.Wrap(err, "looking up drink")
		}
		if other != nil && other.Id != id {
			return echo.NewHTTPError(http.StatusConflict)
		}
		drink.Title = title
	}
	if raw, ok := body["recipe"]; ok {
		recipe, err := domain.ParseRecipe(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		drink.Recipe = recipe
	}
	err = controller.Store.UpdateDrink(*drink)
	if errors.Is(err, repository.ErrDuplicateTitle) {
		return echo.NewHTTPError(http.StatusConflict)
	}
	if err != nil {
		return errors.Wrap(err, "updating drink")
	}
	metrics.RecordDrinkMutation("update")
	logging.Info(logger, "Drink {Id} updated by {Subject}", drink.Id, subject(c))
	return c.JSON(http.StatusOK, drinksResponse{Success: true, Drinks: []domain.DrinkView{drink.Long()}})
}

func (controller *Controller) deleteDrink(c echo.Context) error {
	id, err := parseId(c)
	if err != nil {
		return err
	}
	deleted, err := controller.Store.DeleteDrink(id)
	if err != nil {
		return errors.Wrap(err, "deleting drink")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	metrics.RecordDrinkMutation("delete")
	logging.Info(logger, "Drink {Id} deleted by {Subject}", id, subject(c))
	return c.JSON(http.StatusOK, deleteResponse{Success: true, Delete: id})
}

// subject names the caller for the audit log lines.
func subject(c echo.Context) string {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok || claims.Subject == "" {
		return "unknown"
	}
	return claims.Subject
}
