package orm

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/pescuma/svnstats/lib/model"
)

const activityHotnessTable = "ActivityHotness"

// FixPaths rewrites stored paths with normalize, merging the ones that end up
// equal. Returns the number of merged paths.
func (s *gormStorage) FixPaths(normalize func(string) string) (int, error) {
	merged := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var paths []*sqlPath
		err := tx.Order("id").Find(&paths).Error
		if err != nil {
			return errors.Wrap(err, "error loading paths")
		}

		groups := lo.GroupBy(paths, func(p *sqlPath) string { return normalize(p.Path) })

		keys := lo.Keys(groups)
		sort.Strings(keys)

		for _, normalized := range keys {
			group := groups[normalized]

			keeper, ok := lo.Find(group, func(p *sqlPath) bool { return p.Path == normalized })
			if !ok {
				keeper = group[0]
			}

			for _, dup := range group {
				if dup.ID == keeper.ID {
					continue
				}

				s.console.Debugf("Merging path %v into %v\n", dup.Path, normalized)

				err = mergePath(tx, dup.ID, keeper.ID)
				if err != nil {
					return err
				}

				merged++
			}

			if keeper.Path != normalized {
				s.console.Debugf("Fixing path %v to %v\n", keeper.Path, normalized)

				err = tx.Model(&sqlPath{}).Where("id = ?", keeper.ID).Update("path", normalized).Error
				if err != nil {
					return errors.Wrapf(err, "error fixing path %v", keeper.Path)
				}
			}
		}

		// Derived data has to be rebuilt by the reporting tools
		if merged > 0 {
			err = tx.Migrator().DropTable(activityHotnessTable)
			if err != nil {
				return errors.Wrap(err, "error dropping derived tables")
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return merged, nil
}

func mergePath(tx *gorm.DB, from model.ID, to model.ID) error {
	err := tx.Model(&sqlChangeRecord{}).Where("changedpathid = ?", from).Update("changedpathid", to).Error
	if err != nil {
		return errors.Wrapf(err, "error merging path %v", from)
	}

	err = tx.Model(&sqlChangeRecord{}).Where("copyfrompathid = ?", from).Update("copyfrompathid", to).Error
	if err != nil {
		return errors.Wrapf(err, "error merging path %v", from)
	}

	err = tx.Delete(&sqlPath{}, "id = ?", from).Error
	if err != nil {
		return errors.Wrapf(err, "error deleting path %v", from)
	}

	return nil
}
