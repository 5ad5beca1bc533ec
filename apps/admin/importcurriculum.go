package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ispeaktu/backend/core/catalog"
)

// Spreadsheet layout, one question per row, header in row 1:
//
//	A material id (optional)   B material name
//	C lesson id (optional)     D lesson title
//	E question text            F options, separated by "|"
//	G correct option           H feedback
//
// Rows sharing a material/lesson name belong to the same material/lesson.
// Missing ids get generated once; keep ids in the sheet to re-import without
// orphaning existing progress records.
const optionSeparator = "|"

func (cli *commandLine) importCurriculum(path, sheet string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening spreadsheet: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %q: %v", sheet, err)
	}

	materials, err := parseCurriculumRows(rows)
	if err != nil {
		return err
	}

	// order follows the sheet; indices are assigned here, once, at ingestion
	catalog.AssignOrder(materials)

	ctx := context.Background()
	var questions int
	for _, mat := range materials {
		if err := cli.catalogSvc.Import(ctx, mat); err != nil {
			return fmt.Errorf("importing material %q: %w", mat.Name, err)
		}
		for _, les := range mat.Lessons {
			questions += len(les.Questions)
		}
	}

	logger.Printf("imported %d material(s), %d question(s)", len(materials), questions)
	return nil
}

func parseCurriculumRows(rows [][]string) ([]catalog.Material, error) {
	var materials []catalog.Material
	matIndex := make(map[string]int) // material name -> index in materials
	lesIndex := make(map[string]int) // material name + lesson title -> index in lessons

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		matName := cell(row, 1)
		lesTitle := cell(row, 3)
		text := cell(row, 4)
		if matName == "" || lesTitle == "" || text == "" {
			continue
		}

		mi, ok := matIndex[matName]
		if !ok {
			id := cell(row, 0)
			if id == "" {
				id = uuid.New().String()
			}
			materials = append(materials, catalog.Material{ID: id, Name: matName})
			mi = len(materials) - 1
			matIndex[matName] = mi
		}
		mat := &materials[mi]

		lesKey := matName + "\x00" + lesTitle
		li, ok := lesIndex[lesKey]
		if !ok {
			id := cell(row, 2)
			if id == "" {
				id = uuid.New().String()
			}
			mat.Lessons = append(mat.Lessons, catalog.Lesson{ID: id, MaterialID: mat.ID, Title: lesTitle})
			li = len(mat.Lessons) - 1
			lesIndex[lesKey] = li
		}
		les := &mat.Lessons[li]

		var options []string
		for _, opt := range strings.Split(cell(row, 5), optionSeparator) {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}

		q := catalog.Question{
			ID:            uuid.New().String(),
			LessonID:      les.ID,
			Text:          text,
			Options:       options,
			CorrectOption: cell(row, 6),
			Feedback:      cell(row, 7),
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		les.Questions = append(les.Questions, q)
	}
	return materials, nil
}
