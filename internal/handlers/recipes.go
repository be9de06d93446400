package handlers

import (
	"net/http"

	"brewing_control/internal/recipe"

	"github.com/gin-gonic/gin"
)

// @Summary      List stored recipes
// @Tags         recipes
// @Produce      json
// @Success      200  {array}  models.StoredRecipe
// @Router       /api/v1/recipes [get]
// @Security     BearerAuth
func (h *Handler) listRecipes(c *gin.Context) {
	list, err := h.services.Recipes.List(c.Request.Context())
	if err != nil {
		h.respondError(c, "recipes_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Store a recipe
// @Description  Body is a recipe document in JSON or YAML. ?name= overrides the name inside it.
// @Tags         recipes
// @Accept       json,x-yaml
// @Produce      json
// @Param        body  body   string  true   "Recipe document"
// @Param        name  query  string  false  "Recipe name"
// @Success      201  {object}  models.StoredRecipe
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/recipes [post]
// @Security     BearerAuth
func (h *Handler) createRecipe(c *gin.Context) {
	document, err := readRecipeDocument(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	rec, err := h.services.Recipes.SaveDocument(c.Request.Context(), c.Query(queryParamRecipeName), document)
	if err != nil {
		h.respondError(c, "recipes_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary      Get a stored recipe
// @Description  With Accept: application/x-yaml the recipe is returned in the import format.
// @Tags         recipes
// @Produce      json,x-yaml
// @Param        id  path  string  true  "Recipe ID"
// @Success      200  {object}  models.StoredRecipe
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/recipes/{id} [get]
// @Security     BearerAuth
func (h *Handler) getStoredRecipe(c *gin.Context) {
	rec, err := h.services.Recipes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "recipes_get_failed", err, "id", c.Param("id"))
		return
	}
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEYAML) != gin.MIMEYAML {
		c.JSON(http.StatusOK, rec)
		return
	}
	document, err := recipe.Encode(rec.Name, rec.Steps)
	if err != nil {
		h.respondError(c, "recipes_export_failed", err, "id", rec.ID)
		return
	}
	c.Data(http.StatusOK, gin.MIMEYAML, document)
}

// @Summary      Delete a stored recipe
// @Tags         recipes
// @Param        id  path  string  true  "Recipe ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/recipes/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteRecipe(c *gin.Context) {
	if err := h.services.Recipes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "recipes_delete_failed", err, "id", c.Param("id"))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Load a stored recipe into the engine
// @Tags         recipes
// @Produce      json
// @Param        id  path  string  true  "Recipe ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/recipes/{id}/load [post]
// @Security     BearerAuth
func (h *Handler) loadStoredRecipe(c *gin.Context) {
	snap, err := h.services.Recipes.LoadStored(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "recipes_load_failed", err, "id", c.Param("id"))
		return
	}
	respondWithSnapshot(c, statusLoaded, snap)
}
