package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// CatalogHandler is the admin API for categories, media and playlists.
type CatalogHandler struct {
	*BaseHandler
	categoryService services.CategoryService
	mediaService    services.MediaService
	tokens          middleware.TokenParser
}

func NewCatalogHandler(
	base *BaseHandler,
	categoryService services.CategoryService,
	mediaService services.MediaService,
	tokens middleware.TokenParser,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:     base,
		categoryService: categoryService,
		mediaService:    mediaService,
		tokens:          tokens,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("", middleware.AuthMiddleware(h.tokens))
	read := middleware.RequirePermission("catalog:read")
	write := middleware.RequirePermission("catalog:write")
	del := middleware.RequirePermission("catalog:delete")

	categories := g.Group("/categories")
	{
		categories.GET("", read, h.ListCategories)
		categories.GET("/tree", read, h.CategoryTree)
		categories.GET("/:id", read, h.GetCategory)
		categories.POST("", write, h.CreateCategory)
		categories.PUT("/:id", write, h.UpdateCategory)
		categories.DELETE("/:id", del, h.DeleteCategory)
	}

	videos := g.Group("/videos")
	{
		videos.GET("", read, h.ListVideos)
		videos.GET("/:id", read, h.GetVideo)
		videos.POST("", write, h.CreateVideo)
		videos.PUT("/:id", write, h.UpdateVideo)
		videos.DELETE("/:id", del, h.DeleteVideo)
		videos.POST("/:id/upload", write, h.UploadVideoFile)
		videos.POST("/:id/pills", write, h.AddPill)
		videos.POST("/:id/documents/:document_id", write, h.AttachDocument)
		videos.POST("/:id/reprocess", write, h.ReprocessVideo)
	}

	documents := g.Group("/documents")
	{
		documents.GET("", read, h.ListDocuments)
		documents.GET("/:id", read, h.GetDocument)
		documents.POST("", write, h.CreateDocument)
		documents.PUT("/:id", write, h.UpdateDocument)
		documents.DELETE("/:id", del, h.DeleteDocument)
		documents.POST("/:id/upload", write, h.UploadDocumentFile)
		documents.POST("/:id/reprocess", write, h.ReprocessDocument)
	}

	playlists := g.Group("/playlists")
	{
		playlists.GET("", read, h.ListPlaylists)
		playlists.GET("/:id", read, h.GetPlaylist)
		playlists.POST("", write, h.CreatePlaylist)
		playlists.POST("/:id/items", write, h.AddToPlaylist)
		playlists.DELETE("/:id", del, h.DeletePlaylist)
	}
}

// --- Categories ---

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.categoryService.List(h.GetDB(c), c.Query("active") == "true")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *CatalogHandler) CategoryTree(c *gin.Context) {
	tree, err := h.categoryService.Tree(h.GetDB(c), c.Query("active") != "false")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	cat, err := h.categoryService.GetByID(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	cat, err := h.categoryService.Create(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.CategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	cat, err := h.categoryService.Update(h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.categoryService.Delete(h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Videos ---

func mediaFilter(c *gin.Context) repositories.MediaFilter {
	f := repositories.MediaFilter{
		Query:       strings.TrimSpace(c.Query("q")),
		EnabledOnly: c.Query("enabled") == "true",
	}
	if id, err := strconv.ParseUint(c.Query("category_id"), 10, 64); err == nil {
		f.CategoryID = uint(id)
	}
	return f
}

func (h *CatalogHandler) ListVideos(c *gin.Context) {
	page := ParsePagination(c)
	videos, total, err := h.mediaService.ListVideos(h.GetDB(c), mediaFilter(c), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(videos, total, page))
}

func (h *CatalogHandler) GetVideo(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	video, err := h.mediaService.GetVideo(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *CatalogHandler) CreateVideo(c *gin.Context) {
	var req dto.VideoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	video, err := h.mediaService.CreateVideo(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *CatalogHandler) UpdateVideo(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.VideoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	video, err := h.mediaService.UpdateVideo(c.Request.Context(), h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *CatalogHandler) DeleteVideo(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.mediaService.DeleteVideo(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// formFile reads the multipart "file" part.
func formFile(c *gin.Context) (*services.FileUpload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.NewBadRequestError("multipart field 'file' is required")
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	return &services.FileUpload{Name: header.Filename, Size: header.Size, Reader: f}, func() { _ = f.Close() }, nil
}

func (h *CatalogHandler) UploadVideoFile(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	upload, closeFn, err := formFile(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	field := c.DefaultPostForm("field", services.FieldVideo)
	video, err := h.mediaService.UploadVideoFile(c.Request.Context(), h.GetDB(c), id, field, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *CatalogHandler) AddPill(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.PillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	pill, err := h.mediaService.AddPill(h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pill)
}

func (h *CatalogHandler) AttachDocument(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	docID, err := ParseParamID(c, "document_id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.mediaService.AttachDocument(h.GetDB(c), id, docID, ParseQueryInt(c, "order", 0)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ReprocessVideo(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	report, err := h.mediaService.ProcessVideo(c.Request.Context(), h.GetDB(c), id, true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- Documents ---

func (h *CatalogHandler) ListDocuments(c *gin.Context) {
	page := ParsePagination(c)
	docs, total, err := h.mediaService.ListDocuments(h.GetDB(c), mediaFilter(c), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(docs, total, page))
}

func (h *CatalogHandler) GetDocument(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	doc, err := h.mediaService.GetDocument(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler) CreateDocument(c *gin.Context) {
	var req dto.DocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	doc, err := h.mediaService.CreateDocument(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *CatalogHandler) UpdateDocument(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.DocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	doc, err := h.mediaService.UpdateDocument(c.Request.Context(), h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler) DeleteDocument(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.mediaService.DeleteDocument(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) UploadDocumentFile(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	upload, closeFn, err := formFile(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	field := c.DefaultPostForm("field", services.FieldDocument)
	doc, err := h.mediaService.UploadDocumentFile(c.Request.Context(), h.GetDB(c), id, field, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler) ReprocessDocument(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	report, err := h.mediaService.ProcessDocument(c.Request.Context(), h.GetDB(c), id, true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- Playlists ---

func (h *CatalogHandler) ListPlaylists(c *gin.Context) {
	lists, err := h.mediaService.ListPlaylists(h.GetDB(c), c.Query("enabled") == "true")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *CatalogHandler) GetPlaylist(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	list, err := h.mediaService.GetPlaylist(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) CreatePlaylist(c *gin.Context) {
	var req dto.PlaylistRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	list, err := h.mediaService.CreatePlaylist(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *CatalogHandler) AddToPlaylist(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.PlaylistItemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	list, err := h.mediaService.AddToPlaylist(h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) DeletePlaylist(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.mediaService.DeletePlaylist(h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
