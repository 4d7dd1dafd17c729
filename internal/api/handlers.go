package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cooking-companion/server/internal/chat"
	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/kitchen"
)

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "cooking-companion"})
}

func (s *server) listRecipes(c *gin.Context) {
	entries, err := s.kitchen.ListRecipes(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(entries))
}

func (s *server) searchRecipes(c *gin.Context) {
	entries, err := s.kitchen.SearchRecipes(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(entries))
}

func (s *server) getRecipe(c *gin.Context) {
	id := c.Param("id")
	recipe, err := s.kitchen.GetRecipe(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (s *server) createRecipe(c *gin.Context) {
	recipe, ok := s.decodeBody(c)
	if !ok {
		return
	}
	saved, err := s.kitchen.SaveRecipe(c.Request.Context(), recipe)
	if err != nil {
		s.writeError(c, err)
		return
	}
	id, _ := saved.GetString("id")
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Recipe %q created.", id)})
}

func (s *server) updateRecipe(c *gin.Context) {
	recipe, ok := s.decodeBody(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if recipe.IsObject() {
		recipe = recipe.Set("id", docvalue.StringValue(id))
	}
	if _, err := s.kitchen.SaveEditedRecipe(c.Request.Context(), recipe); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Recipe %q updated.", id)})
}

func (s *server) deleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := s.kitchen.DeleteRecipe(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Recipe %q deleted.", id)})
}

func (s *server) getProfile(c *gin.Context) {
	s.getDocument(s.kitchen.GetTasteProfile)(c)
}

func (s *server) patchProfile(c *gin.Context) {
	s.patchDocument(s.kitchen.UpdateTasteProfile)(c)
}

type logCookRequest struct {
	RecipeID string `json:"recipe_id"`
	Date     string `json:"date"`
	Result   string `json:"result"`
	Notes    string `json:"notes"`
}

func (s *server) logCook(c *gin.Context) {
	var req logCookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", docstore.ErrMalformedInput, err))
		return
	}
	err := s.kitchen.LogCook(c.Request.Context(), docstore.CookEntry{
		RecipeID: req.RecipeID,
		Date:     req.Date,
		Result:   req.Result,
		Notes:    req.Notes,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Cook logged for %q on %s.", req.RecipeID, req.Date)})
}

func (s *server) getDocument(get func(context.Context) (docvalue.Value, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := get(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func (s *server) patchDocument(update func(context.Context, docvalue.Value) (docvalue.Value, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := s.decodeBody(c)
		if !ok {
			return
		}
		merged, err := update(c.Request.Context(), patch)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, merged)
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *server) addCategory(add func(context.Context, string) (docvalue.Value, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, fmt.Errorf("%w: %w", docstore.ErrMalformedInput, err))
			return
		}
		doc, err := add(c.Request.Context(), req.Name)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func (s *server) removeCategory(remove func(context.Context, string) (docvalue.Value, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := remove(c.Request.Context(), c.Param("name"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func (s *server) chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", docstore.ErrMalformedInput, err))
		return
	}
	if s.assistant == nil {
		s.writeError(c, chat.ErrNotConfigured)
		return
	}
	reply, err := s.assistant.Chat(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// decodeBody reads the request body as an order-preserving document.
func (s *server) decodeBody(c *gin.Context) (docvalue.Value, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", docstore.ErrMalformedInput, err))
		return docvalue.Value{}, false
	}
	doc, err := kitchen.DecodeJSON(string(raw))
	if err != nil {
		s.writeError(c, err)
		return docvalue.Value{}, false
	}
	return doc, true
}

func nonNil(entries []indexing.Entry) []indexing.Entry {
	if entries == nil {
		return []indexing.Entry{}
	}
	return entries
}
