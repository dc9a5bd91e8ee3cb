package store

import (
	"context"

	"fabledesk/internal/model"
)

const demoUniverseName = "The Sundered Realms"

// InjectDemoData seeds a sample universe (creatures, locations, a
// timeline, a novel with chapters and scenes) and a kanban board.
// Calling it twice creates a second copy; use ResetDemoDataScoped to
// reseed in place.
func (s *Store) InjectDemoData(ctx context.Context) error {
	u, err := s.CreateUniverse(ctx, demoUniverseName,
		"Three continents adrift after the Sundering, held together by ley-lines and stubbornness.")
	if err != nil {
		return err
	}
	return s.seedUniverse(ctx, u.ID)
}

// ResetDemoDataScoped wipes and reseeds one universe's worldbuilding
// and forge rows. The universe row itself survives so references to it
// (boards, snapshots of other universes) stay intact.
func (s *Store) ResetDemoDataScoped(ctx context.Context, universeID string) error {
	if _, err := s.GetUniverse(ctx, universeID); err != nil {
		return err
	}
	wipes := []string{
		`DELETE FROM creatures WHERE universe_id = ?`,
		`DELETE FROM locations WHERE universe_id = ?`,
		`DELETE FROM timeline_eras WHERE universe_id = ?`,
		`DELETE FROM timeline_events WHERE universe_id = ?`,
		`DELETE FROM scenes WHERE chapter_id IN (SELECT id FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?))`,
		`DELETE FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?)`,
		`DELETE FROM novels WHERE universe_id = ?`,
	}
	for _, q := range wipes {
		if _, err := s.db.ExecContext(ctx, q, universeID); err != nil {
			return err
		}
	}
	return s.seedUniverse(ctx, universeID)
}

func (s *Store) seedUniverse(ctx context.Context, universeID string) error {
	harbor, err := s.SaveLocation(ctx, model.Location{
		UniverseID:  universeID,
		Name:        "Gullwing Harbor",
		Kind:        "city",
		Description: "Last deepwater port on the western shelf.",
	})
	if err != nil {
		return err
	}
	peaks, err := s.SaveLocation(ctx, model.Location{
		UniverseID:  universeID,
		Name:        "The Cinder Peaks",
		Kind:        "range",
		Description: "Volcanic spine dividing the inland duchies.",
	})
	if err != nil {
		return err
	}

	creatures := []model.Creature{
		{UniverseID: universeID, Name: "Ash Wyrm", Kind: "dragon", Habitat: "caldera", Danger: 5, HomeLocationID: &peaks.ID,
			Description: "Burrows through cooled lava flows; hoards glass, not gold."},
		{UniverseID: universeID, Name: "Harbor Mimic", Kind: "aberration", Habitat: "docks", Danger: 3, HomeLocationID: &harbor.ID,
			Description: "Poses as a mooring post until something warm ties up."},
		{UniverseID: universeID, Name: "Ley Moth", Kind: "spirit", Habitat: "anywhere", Danger: 1,
			Description: "Swarms where the ley-lines fray. Harmless, ominous."},
	}
	for _, c := range creatures {
		if _, err := s.SaveCreature(ctx, c); err != nil {
			return err
		}
	}

	if _, err := s.SaveEra(ctx, model.TimelineEra{
		UniverseID: universeID, Name: "Age of Sail", StartYear: 210, EndYear: 480,
		Description: "Reconnection of the sundered continents by sea.", Color: "#2d6a9f",
	}); err != nil {
		return err
	}
	events := []model.TimelineEvent{
		{UniverseID: universeID, Title: "The Sundering", Year: 0, Importance: 5, Kind: "catastrophe",
			DisplayDate: "Year 0", Description: "The single continent breaks apart overnight."},
		{UniverseID: universeID, Title: "Founding of Gullwing Harbor", Year: 214, Importance: 3,
			Kind: "founding", LocationID: &harbor.ID},
	}
	for _, e := range events {
		if _, err := s.SaveEvent(ctx, e); err != nil {
			return err
		}
	}

	novel, err := s.CreateNovel(ctx, model.Novel{
		UniverseID: &universeID,
		Title:      "Saltglass",
		Synopsis:   "A harbor pilot smuggles the last living ley-cartographer across a sea that remembers being land.",
		Status:     "drafting",
	})
	if err != nil {
		return err
	}
	ch1, err := s.CreateChapter(ctx, model.Chapter{NovelID: novel.ID, Title: "Dead Reckoning"})
	if err != nil {
		return err
	}
	ch2, err := s.CreateChapter(ctx, model.Chapter{NovelID: novel.ID, Title: "The Glass Meridian"})
	if err != nil {
		return err
	}
	scenes := []model.Scene{
		{ChapterID: ch1.ID, Title: "Harbor at Low Tide", Status: "draft",
			Body: "The tide went out and did not come back for an hour, which in Gullwing meant someone important was arriving by ley-line."},
		{ChapterID: ch1.ID, Title: "The Passenger", Status: "draft",
			Body: "She paid in pre-Sundering coin. Nobody sane carried that anymore."},
		{ChapterID: ch2.ID, Title: "Charts That Lie", Status: "outline"},
	}
	for _, sc := range scenes {
		if _, err := s.CreateScene(ctx, sc); err != nil {
			return err
		}
	}

	board, err := s.CreateBoard(ctx, "Saltglass Draft Plan", "writing")
	if err != nil {
		return err
	}
	data, err := s.GetBoardData(ctx, board.ID)
	if err != nil {
		return err
	}
	var todo string
	for _, col := range data.Columns {
		if col.Name == "To Do" {
			todo = col.ID
		}
	}
	cards := []model.Card{
		{ColumnID: todo, Title: "Outline act two", Priority: 2},
		{ColumnID: todo, Title: "Name the cartographer", Priority: 1},
	}
	for _, c := range cards {
		if _, err := s.SaveCard(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
