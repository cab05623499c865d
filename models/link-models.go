package models

// Join tables. The composite primary key is what finally rejects a duplicate
// pair when two identical link requests race.

type AlbumPhoto struct {
	AlbumID uint `json:"album_id" gorm:"column:album_id;primaryKey;autoIncrement:false"`
	PhotoID uint `json:"photo_id" gorm:"column:photo_id;primaryKey;autoIncrement:false;index"`
}

func (AlbumPhoto) TableName() string { return "album_photo" }

type PhotoTag struct {
	PhotoID uint `json:"photo_id" gorm:"column:photo_id;primaryKey;autoIncrement:false"`
	TagID   uint `json:"tag_id" gorm:"column:tag_id;primaryKey;autoIncrement:false;index"`
}

func (PhotoTag) TableName() string { return "photo_tags" }

type AlbumTag struct {
	AlbumID uint `json:"album_id" gorm:"column:album_id;primaryKey;autoIncrement:false"`
	TagID   uint `json:"tag_id" gorm:"column:tag_id;primaryKey;autoIncrement:false;index"`
}

func (AlbumTag) TableName() string { return "album_tags" }

// All lists every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{}, &Photo{}, &Album{}, &Tag{},
		&AlbumPhoto{}, &PhotoTag{}, &AlbumTag{},
	}
}
