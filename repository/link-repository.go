package repository

import (
	"context"
	"fmt"

	"github.com/krishkalaria12/snap-album/apperr"
	"gorm.io/gorm"
)

// LinkSpec describes one many-to-many association. The join columns carry
// the same names as the primary keys of the tables they point to, and both
// tables have a user_id owner column.
type LinkSpec struct {
	Table      string
	LeftTable  string
	LeftCol    string
	RightTable string
	RightCol   string

	// DeniedMsg is used for both "does not exist" and "not yours".
	DeniedMsg    string
	DuplicateMsg string
}

var (
	PhotoTags = LinkSpec{
		Table:        "photo_tags",
		LeftTable:    "photos",
		LeftCol:      "photo_id",
		RightTable:   "tags",
		RightCol:     "tag_id",
		DeniedMsg:    "Tag not found, photo not found, or access denied",
		DuplicateMsg: "Tag already associated with photo",
	}
	AlbumTags = LinkSpec{
		Table:        "album_tags",
		LeftTable:    "albums",
		LeftCol:      "album_id",
		RightTable:   "tags",
		RightCol:     "tag_id",
		DeniedMsg:    "Tag not found, album not found, or access denied",
		DuplicateMsg: "Tag already associated with album",
	}
	AlbumPhotos = LinkSpec{
		Table:        "album_photo",
		LeftTable:    "albums",
		LeftCol:      "album_id",
		RightTable:   "photos",
		RightCol:     "photo_id",
		DeniedMsg:    "Photo not found, album not found, or access denied",
		DuplicateMsg: "Photo already in album",
	}
)

// Pair is one association row.
type Pair struct {
	LeftID  uint `gorm:"column:left_id"`
	RightID uint `gorm:"column:right_id"`
}

type ownership struct {
	LeftOwned  int64 `gorm:"column:left_owned"`
	RightOwned int64 `gorm:"column:right_owned"`
}

type LinkRepository struct {
	db   *gorm.DB
	spec LinkSpec

	linkSQL   string
	unlinkSQL string
	probeSQL  string
	listSQL   string
}

func NewLinkRepository(db *gorm.DB, spec LinkSpec) *LinkRepository {
	s := spec
	return &LinkRepository{
		db:   db,
		spec: spec,

		// Ownership of both ends and absence of the pair are checked by the
		// same statement that inserts.
		linkSQL: fmt.Sprintf(`INSERT INTO %s (%s, %s)
SELECT l.%s, r.%s FROM %s l, %s r
WHERE l.%s = ? AND l.user_id = ? AND r.%s = ? AND r.user_id = ?
AND NOT EXISTS (SELECT 1 FROM %s j WHERE j.%s = l.%s AND j.%s = r.%s)`,
			s.Table, s.LeftCol, s.RightCol,
			s.LeftCol, s.RightCol, s.LeftTable, s.RightTable,
			s.LeftCol, s.RightCol,
			s.Table, s.LeftCol, s.LeftCol, s.RightCol, s.RightCol),

		unlinkSQL: fmt.Sprintf(`DELETE FROM %s
WHERE %s = ? AND %s = ?
AND EXISTS (SELECT 1 FROM %s l WHERE l.%s = ? AND l.user_id = ?)
AND EXISTS (SELECT 1 FROM %s r WHERE r.%s = ? AND r.user_id = ?)`,
			s.Table, s.LeftCol, s.RightCol,
			s.LeftTable, s.LeftCol,
			s.RightTable, s.RightCol),

		probeSQL: fmt.Sprintf(`SELECT
(SELECT COUNT(*) FROM %s WHERE %s = ? AND user_id = ?) AS left_owned,
(SELECT COUNT(*) FROM %s WHERE %s = ? AND user_id = ?) AS right_owned`,
			s.LeftTable, s.LeftCol, s.RightTable, s.RightCol),

		listSQL: fmt.Sprintf(`SELECT j.%s AS left_id, j.%s AS right_id
FROM %s j JOIN %s l ON l.%s = j.%s
WHERE l.user_id = ?
ORDER BY j.%s, j.%s`,
			s.LeftCol, s.RightCol,
			s.Table, s.LeftTable, s.LeftCol, s.LeftCol,
			s.LeftCol, s.RightCol),
	}
}

// Link associates leftID with rightID when both belong to ownerID. A second
// identical call yields a Conflict and never a second row.
func (r *LinkRepository) Link(ctx context.Context, leftID, rightID, ownerID uint) error {
	result := r.db.WithContext(ctx).Exec(r.linkSQL, leftID, ownerID, rightID, ownerID)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return apperr.Conflict(r.spec.DuplicateMsg)
		}
		return storageErr("link "+r.spec.Table, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing inserted: tell "already linked" apart from "not allowed".
	// This read only classifies the outcome, it never writes.
	owned, err := r.probe(ctx, leftID, rightID, ownerID)
	if err != nil {
		return err
	}
	if owned.LeftOwned > 0 && owned.RightOwned > 0 {
		return apperr.Conflict(r.spec.DuplicateMsg)
	}
	return apperr.Forbidden(r.spec.DeniedMsg)
}

func (r *LinkRepository) probe(ctx context.Context, leftID, rightID, ownerID uint) (ownership, error) {
	var owned ownership
	err := r.db.WithContext(ctx).Raw(r.probeSQL, leftID, ownerID, rightID, ownerID).Scan(&owned).Error
	if err != nil {
		return ownership{}, storageErr("probe "+r.spec.Table, err)
	}
	return owned, nil
}

// Unlink removes the pair when both ends belong to ownerID. Missing pairs,
// missing entities and foreign entities all give the same Forbidden.
func (r *LinkRepository) Unlink(ctx context.Context, leftID, rightID, ownerID uint) error {
	result := r.db.WithContext(ctx).Exec(r.unlinkSQL, leftID, rightID, leftID, ownerID, rightID, ownerID)
	if result.Error != nil {
		return storageErr("unlink "+r.spec.Table, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Forbidden(r.spec.DeniedMsg)
	}
	return nil
}

// ListAllByOwner returns every pair whose left entity belongs to ownerID.
func (r *LinkRepository) ListAllByOwner(ctx context.Context, ownerID uint) ([]Pair, error) {
	pairs := make([]Pair, 0)
	if err := r.db.WithContext(ctx).Raw(r.listSQL, ownerID).Scan(&pairs).Error; err != nil {
		return nil, storageErr("list "+r.spec.Table, err)
	}
	return pairs, nil
}

// ListRight loads into dest (a pointer to a slice of the right-hand model)
// the entities linked to leftID. It fails with NotFoundOrForbidden when
// leftID does not belong to ownerID.
func (r *LinkRepository) ListRight(ctx context.Context, leftID, ownerID uint, dest interface{}) error {
	db := r.db.WithContext(ctx)

	var count int64
	err := db.Table(r.spec.LeftTable).
		Where(r.spec.LeftCol+" = ? AND user_id = ?", leftID, ownerID).
		Count(&count).Error
	if err != nil {
		return storageErr("find "+r.spec.LeftTable, err)
	}
	if count == 0 {
		return apperr.NotFoundOrForbidden(r.spec.DeniedMsg)
	}

	err = db.Table(r.spec.RightTable+" r").
		Select("r.*").
		Joins(fmt.Sprintf("JOIN %s j ON j.%s = r.%s", r.spec.Table, r.spec.RightCol, r.spec.RightCol)).
		Where("j."+r.spec.LeftCol+" = ? AND r.user_id = ?", leftID, ownerID).
		Order("r." + r.spec.RightCol).
		Find(dest).Error
	if err != nil {
		return storageErr("list linked "+r.spec.RightTable, err)
	}
	return nil
}
