package services

import (
	"errors"
	"html"
	"net/url"
	"regexp"
	"strings"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"gorm.io/gorm"
)

type CategoryService interface {
	List(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	GetByID(db *gorm.DB, id uint) (*models.Category, error)
	GetByName(db *gorm.DB, name string) (*models.Category, error)
	Tree(db *gorm.DB, activeOnly bool) ([]*dto.CategoryNode, error)
	// RenderTreeHTML renders the active categories as nested lists linking
	// to base + "/c/<name>/".
	RenderTreeHTML(db *gorm.DB, base string) (string, error)
	Create(db *gorm.DB, req *dto.CategoryRequest) (*models.Category, error)
	Update(db *gorm.DB, id uint, req *dto.CategoryRequest) (*models.Category, error)
	Delete(db *gorm.DB, id uint) error
}

type CategoryServiceImpl struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &CategoryServiceImpl{categoryRepo: categoryRepo}
}

func (s *CategoryServiceImpl) List(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	cats, err := s.categoryRepo.FindAll(db, activeOnly)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return cats, nil
}

func (s *CategoryServiceImpl) GetByID(db *gorm.DB, id uint) (*models.Category, error) {
	c, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		return nil, categoryError(err)
	}
	return c, nil
}

func (s *CategoryServiceImpl) GetByName(db *gorm.DB, name string) (*models.Category, error) {
	c, err := s.categoryRepo.FindByName(db, name)
	if err != nil {
		return nil, categoryError(err)
	}
	return c, nil
}

func (s *CategoryServiceImpl) Tree(db *gorm.DB, activeOnly bool) ([]*dto.CategoryNode, error) {
	cats, err := s.List(db, activeOnly)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(cats), nil
}

func (s *CategoryServiceImpl) RenderTreeHTML(db *gorm.DB, base string) (string, error) {
	tree, err := s.Tree(db, true)
	if err != nil {
		return "", err
	}
	return RenderCategoryTree(tree, base), nil
}

func (s *CategoryServiceImpl) Create(db *gorm.DB, req *dto.CategoryRequest) (*models.Category, error) {
	c := &models.Category{IsActive: true}
	applyCategoryRequest(c, req)

	if c.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(db, *c.ParentID); err != nil {
			return nil, categoryError(err)
		}
	}
	if err := s.categoryRepo.Create(db, c); err != nil {
		return nil, categoryError(err)
	}
	if req.IsActive != nil && !*req.IsActive {
		// gorm skips zero values that carry a column default on insert.
		if err := db.Model(c).Update("is_active", false).Error; err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}
	return c, nil
}

func (s *CategoryServiceImpl) Update(db *gorm.DB, id uint, req *dto.CategoryRequest) (*models.Category, error) {
	c, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		return nil, categoryError(err)
	}
	applyCategoryRequest(c, req)

	if c.ParentID != nil {
		if err := s.checkAncestry(db, id, *c.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.categoryRepo.Update(db, c); err != nil {
		return nil, categoryError(err)
	}
	return c, nil
}

func (s *CategoryServiceImpl) Delete(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return s.categoryRepo.Delete(tx, id)
	})
	if err != nil {
		return categoryError(err)
	}
	return nil
}

// checkAncestry rejects parentID when id is parentID or one of its ancestors.
func (s *CategoryServiceImpl) checkAncestry(db *gorm.DB, id, parentID uint) error {
	seen := map[uint]bool{}
	cur := &parentID
	for cur != nil {
		if *cur == id {
			return apperrors.ErrCategoryCycle
		}
		if seen[*cur] {
			return apperrors.ErrCategoryCycle
		}
		seen[*cur] = true
		parent, err := s.categoryRepo.FindByID(db, *cur)
		if err != nil {
			return categoryError(err)
		}
		cur = parent.ParentID
	}
	return nil
}

func applyCategoryRequest(c *models.Category, req *dto.CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	c.Slug = strings.TrimSpace(req.Slug)
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	c.ParentID = req.ParentID
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	c.IconPath = req.IconPath
	c.SortOrder = req.Order
	c.MetaTitle = req.MetaTitle
	c.MetaDescription = req.MetaDescription
	c.MetaKeywords = req.MetaKeywords
}

func categoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.ErrAlreadyExists(err)
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.DatabaseError(err)
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

var slugReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "è", "e", "é", "e", "ì", "i", "í", "i",
	"ò", "o", "ó", "o", "ù", "u", "ú", "u",
)

// Slugify lowercases name and collapses everything but letters and digits
// into single dashes.
func Slugify(name string) string {
	s := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BuildCategoryTree turns a flat list in listing order into a forest.
// Categories whose parent is not in the list become roots; members of a
// parent cycle are never reached and are left out.
func BuildCategoryTree(cats []models.Category) []*dto.CategoryNode {
	byID := make(map[uint]bool, len(cats))
	for _, c := range cats {
		byID[c.ID] = true
	}
	children := map[uint][]models.Category{}
	var roots []models.Category
	for _, c := range cats {
		if c.ParentID == nil || !byID[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	visited := map[uint]bool{}
	var build func(c models.Category) *dto.CategoryNode
	build = func(c models.Category) *dto.CategoryNode {
		visited[c.ID] = true
		node := &dto.CategoryNode{ID: c.ID, Name: c.Name, Slug: c.Slug, Order: c.SortOrder}
		for _, child := range children[c.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*dto.CategoryNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, build(r))
	}
	if len(visited) < len(cats) {
		logger.Warn("category tree has unreachable nodes", "total", len(cats), "reachable", len(visited))
	}
	return forest
}

// RenderCategoryTree renders nodes depth-first as nested <ul> lists.
func RenderCategoryTree(nodes []*dto.CategoryNode, base string) string {
	if len(nodes) == 0 {
		return ""
	}
	base = strings.TrimRight(base, "/")
	var b strings.Builder
	var walk func(level []*dto.CategoryNode)
	walk = func(level []*dto.CategoryNode) {
		b.WriteString("<ul>")
		for _, n := range level {
			b.WriteString(`<li><a href="`)
			b.WriteString(html.EscapeString(base + "/c/" + url.PathEscape(n.Name) + "/"))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(n.Name))
			b.WriteString("</a>")
			if len(n.Children) > 0 {
				walk(n.Children)
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}
	walk(nodes)
	return b.String()
}
