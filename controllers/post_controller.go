package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/utils"
)

const dateLayout = "2006-01-02"

type PostController struct {
	posts *services.PostService
}

type CreatePostRequest struct {
	Title          string   `form:"title" json:"title" binding:"required"`
	Description    string   `form:"description" json:"description" binding:"required"`
	Price          *float64 `form:"price" json:"price" binding:"required"`
	BedCount       int      `form:"bedCount" json:"bedCount"`
	BathCount      int      `form:"bathCount" json:"bathCount"`
	NumberOfSpots  int      `form:"numberOfSpots" json:"numberOfSpots"`
	StartDateRange string   `form:"startDateRange" json:"startDateRange" binding:"required"`
	EndDateRange   string   `form:"endDateRange" json:"endDateRange" binding:"required"`
	City           string   `form:"city" json:"city" binding:"required"`
	State          string   `form:"state" json:"state" binding:"required"`
	Zip            string   `form:"zip" json:"zip" binding:"required"`
}

type UpdatePostRequest struct {
	StartDateRange *string  `json:"startDateRange"`
	EndDateRange   *string  `json:"endDateRange"`
	Price          *float64 `json:"price"`
	BedCount       *int     `json:"bedCount"`
	BathCount      *int     `json:"bathCount"`
	NumberOfSpots  *int     `json:"numberOfSpots"`
}

func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// CreatePost godoc
// @Summary Create a new post
// @Description Creates an unapproved listing, uploading any attached photos
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.Post
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	actor := utils.GetActor(c)
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	start, err := parseDate(req.StartDateRange)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid startDateRange")
		return
	}
	end, err := parseDate(req.EndDateRange)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid endDateRange")
		return
	}

	photos, closeAll, err := readPhotos(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer closeAll()

	post, err := pc.posts.Create(c.Request.Context(), actor, services.CreatePostInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		BedCount:       req.BedCount,
		BathCount:      req.BathCount,
		NumberOfSpots:  req.NumberOfSpots,
		StartDateRange: start,
		EndDateRange:   end,
		City:           req.City,
		State:          req.State,
		Zip:            req.Zip,
	}, photos)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    post,
		Message: "Post created and awaiting approval",
	})
}

// GetPosts returns approved, active posts matching the query filters.
func (pc *PostController) GetPosts(c *gin.Context) {
	filter, err := parsePostFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := pc.posts.ListPublic(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

func (pc *PostController) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	post, err := pc.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	// Hidden posts are visible to their owner and admins only.
	if !post.Visible() {
		actor := utils.GetActor(c)
		if actor == nil || (!actor.IsAdmin() && actor.ID != post.UserID) {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post})
}

func (pc *PostController) GetMyPosts(c *gin.Context) {
	actor := utils.GetActor(c)
	posts, err := pc.posts.ListByUser(c.Request.Context(), actor.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

// GetAllPosts is the admin listing. It accepts the public filters plus
// userEmail, approved and active.
func (pc *PostController) GetAllPosts(c *gin.Context) {
	filter, err := parsePostFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Approved, err = queryBool(c, "approved"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Active, err = queryBool(c, "active"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := pc.posts.ListAll(c.Request.Context(), filter, strings.TrimSpace(c.Query("userEmail")))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

// UpdatePost godoc
// @Summary Update an existing post
// @Description Updates dates, price and counts of a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param post body UpdatePostRequest true "Post update request"
// @Success 200 {object} models.Post
// @Router /posts/{id} [put]
func (pc *PostController) UpdatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	upd := services.PostUpdate{
		Price:         req.Price,
		BedCount:      req.BedCount,
		BathCount:     req.BathCount,
		NumberOfSpots: req.NumberOfSpots,
	}
	if req.StartDateRange != nil {
		start, err := parseDate(*req.StartDateRange)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid startDateRange")
			return
		}
		upd.StartDateRange = &start
	}
	if req.EndDateRange != nil {
		end, err := parseDate(*req.EndDateRange)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid endDateRange")
			return
		}
		upd.EndDateRange = &end
	}

	post, err := pc.posts.Update(c.Request.Context(), utils.GetActor(c), id, upd)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post, Message: "Post updated"})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.posts.Delete(c.Request.Context(), utils.GetActor(c), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Post deleted successfully"})
}

func (pc *PostController) ApprovePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := pc.posts.Approve(c.Request.Context(), id, utils.GetActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post, Message: "Post approved"})
}

func (pc *PostController) ApproveAllPosts(c *gin.Context) {
	count, err := pc.posts.ApproveAll(c.Request.Context(), utils.GetActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Meta:    gin.H{"approved": count},
		Message: fmt.Sprintf("%d post(s) approved", count),
	})
}

func (pc *PostController) DeactivatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := pc.posts.DeactivateAs(c.Request.Context(), utils.GetActor(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post, Message: "Post deactivated"})
}

func parsePostFilter(c *gin.Context) (services.PostFilter, error) {
	var (
		f   services.PostFilter
		err error
	)
	if f.PriceMin, err = queryFloat(c, "priceMin"); err != nil {
		return f, err
	}
	if f.PriceMax, err = queryFloat(c, "priceMax"); err != nil {
		return f, err
	}
	if f.BedCount, err = queryInt(c, "bedCount"); err != nil {
		return f, err
	}
	if f.BathCount, err = queryInt(c, "bathCount"); err != nil {
		return f, err
	}
	if f.NumberOfSpots, err = queryInt(c, "numberOfSpots"); err != nil {
		return f, err
	}
	if f.StartDateRange, err = queryDate(c, "startDateRange"); err != nil {
		return f, err
	}
	if f.EndDateRange, err = queryDate(c, "endDateRange"); err != nil {
		return f, err
	}
	f.City = strings.TrimSpace(c.Query("city"))
	f.State = strings.TrimSpace(c.Query("state"))
	f.Zip = strings.TrimSpace(c.Query("zip"))
	f.Title = strings.TrimSpace(c.Query("title"))
	f.Description = strings.TrimSpace(c.Query("description"))
	return f, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &v, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &v, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &v, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := parseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &v, nil
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// readPhotos opens the "photos" files of a multipart request. Requests
// without a multipart body carry no photos.
func readPhotos(c *gin.Context) ([]services.Photo, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fmt.Errorf("invalid multipart form: %v", err)
	}

	headers := form.File["photos"]
	photos := make([]services.Photo, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("cannot read %s", fh.Filename)
		}
		files = append(files, f)
		photos = append(photos, services.Photo{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return photos, closeAll, nil
}
