package entity

type Theatre struct {
	BaseSimple
	Name string `db:"name"`
	City string `db:"city"`
}
