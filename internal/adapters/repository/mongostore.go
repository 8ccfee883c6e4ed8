package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quadra2003/networking-lunches/internal/domain/model"
	"github.com/quadra2003/networking-lunches/pkg/metrics"
)

// Collection names.
const (
	participantCollection = "participants"
	groupCollection       = "match_groups"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore implements Store on two MongoDB collections keyed by
// string ids. Ids are uuids allocated here rather than ObjectIDs so the
// memory and Mongo backends are interchangeable.
type MongoStore struct {
	client       *mongo.Client
	participants *mongo.Collection
	groups       *mongo.Collection
}

// participantDoc is the BSON shape of a participant record.
type participantDoc struct {
	ID                    string              `bson:"_id"`
	Name                  string              `bson:"name"`
	Email                 string              `bson:"email"`
	PracticeAreas         []string            `bson:"practice_areas"`
	Experience            string              `bson:"experience"`
	Availability          []string            `bson:"availability"`
	Locations             []string            `bson:"locations"`
	SlotLocations         map[string][]string `bson:"slot_locations,omitempty"`
	UsesSeparateLocations bool                `bson:"uses_separate_locations"`
	Status                string              `bson:"status"`
	MatchGroupID          string              `bson:"match_group_id,omitempty"`
	Cycle                 string              `bson:"cycle"`
	CreatedAt             time.Time           `bson:"created_at"`
	UpdatedAt             time.Time           `bson:"updated_at"`
}

// groupDoc is the BSON shape of a match group record.
type groupDoc struct {
	ID          string    `bson:"_id"`
	Cycle       string    `bson:"cycle"`
	Slot        string    `bson:"slot"`
	Location    string    `bson:"location"`
	MemberIDs   []string  `bson:"member_ids"`
	IsFinalized bool      `bson:"is_finalized"`
	MeetingTime time.Time `bson:"meeting_time,omitempty"`
	Venue       string    `bson:"venue,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and returns a store over the named
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:       client,
		participants: db.Collection(participantCollection),
		groups:       db.Collection(groupCollection),
	}, nil
}

// CreateParticipant persists a new participant and returns its id.
func (s *MongoStore) CreateParticipant(ctx context.Context, p *model.Participant) (string, error) {
	defer observe("create_participant", time.Now())

	doc := toParticipantDoc(p)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.participants.InsertOne(ctx, doc); err != nil {
		metrics.RecordStoreError("create_participant")
		return "", fmt.Errorf("insert participant: %w", err)
	}
	return doc.ID, nil
}

// Participant returns one record by id.
func (s *MongoStore) Participant(ctx context.Context, id string) (*model.Participant, error) {
	defer observe("get_participant", time.Now())

	var doc participantDoc
	err := s.participants.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		metrics.RecordStoreError("get_participant")
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return fromParticipantDoc(&doc), nil
}

// ParticipantsByStatus lists a cycle's participants with the given
// status, ordered by creation time to match insertion order.
func (s *MongoStore) ParticipantsByStatus(ctx context.Context, cycle string, status model.Status) ([]*model.Participant, error) {
	defer observe("list_participants", time.Now())

	filter := bson.M{"cycle": cycle, "status": string(status)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.participants.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordStoreError("list_participants")
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer cur.Close(ctx)

	var out []*model.Participant
	for cur.Next(ctx) {
		var doc participantDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode participant: %w", err)
		}
		out = append(out, fromParticipantDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

// CreateGroup persists a new match group and returns its id.
func (s *MongoStore) CreateGroup(ctx context.Context, g *model.MatchGroup) (string, error) {
	defer observe("create_group", time.Now())

	doc := toGroupDoc(g)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.groups.InsertOne(ctx, doc); err != nil {
		metrics.RecordStoreError("create_group")
		return "", fmt.Errorf("insert group: %w", err)
	}
	return doc.ID, nil
}

// Group returns one group by id.
func (s *MongoStore) Group(ctx context.Context, id string) (*model.MatchGroup, error) {
	defer observe("get_group", time.Now())

	var doc groupDoc
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if err != nil {
		metrics.RecordStoreError("get_group")
		return nil, fmt.Errorf("find group: %w", err)
	}
	return fromGroupDoc(&doc), nil
}

// GroupsByCycle lists a cycle's groups ordered by creation time.
func (s *MongoStore) GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error) {
	defer observe("list_groups", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.groups.Find(ctx, bson.M{"cycle": cycle}, opts)
	if err != nil {
		metrics.RecordStoreError("list_groups")
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer cur.Close(ctx)

	var out []*model.MatchGroup
	for cur.Next(ctx) {
		var doc groupDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		out = append(out, fromGroupDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return out, nil
}

// UpdateGroup replaces a stored group.
func (s *MongoStore) UpdateGroup(ctx context.Context, g *model.MatchGroup) error {
	defer observe("update_group", time.Now())

	doc := toGroupDoc(g)
	doc.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"cycle":        doc.Cycle,
		"slot":         doc.Slot,
		"location":     doc.Location,
		"member_ids":   doc.MemberIDs,
		"is_finalized": doc.IsFinalized,
		"meeting_time": doc.MeetingTime,
		"venue":        doc.Venue,
		"updated_at":   doc.UpdatedAt,
	}}
	res, err := s.groups.UpdateByID(ctx, doc.ID, update)
	if err != nil {
		metrics.RecordStoreError("update_group")
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", g.ID, ErrNotFound)
	}
	return nil
}

// MarkMatched batch-updates participants to matched with their group
// back-references.
func (s *MongoStore) MarkMatched(ctx context.Context, groupByParticipant map[string]string) error {
	defer observe("mark_matched", time.Now())

	if len(groupByParticipant) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(groupByParticipant))
	for id, groupID := range groupByParticipant {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{
				"status":         string(model.StatusMatched),
				"match_group_id": groupID,
				"updated_at":     now,
			}}))
	}

	res, err := s.participants.BulkWrite(ctx, models)
	if err != nil {
		metrics.RecordStoreError("mark_matched")
		return fmt.Errorf("mark matched: %w", err)
	}
	if int(res.MatchedCount) != len(groupByParticipant) {
		return fmt.Errorf("mark matched: %d of %d participants found: %w",
			res.MatchedCount, len(groupByParticipant), ErrNotFound)
	}
	return nil
}

// Counts reports stored totals. Count failures read as zero.
func (s *MongoStore) Counts(ctx context.Context) (int, int) {
	pc, _ := s.participants.CountDocuments(ctx, bson.M{})
	gc, _ := s.groups.CountDocuments(ctx, bson.M{})
	return int(pc), int(gc)
}

// StatusCounts reports pending and matched participant totals. Count
// failures read as zero.
func (s *MongoStore) StatusCounts(ctx context.Context) (int, int) {
	pending, _ := s.participants.CountDocuments(ctx, bson.M{"status": string(model.StatusPending)})
	matched, _ := s.participants.CountDocuments(ctx, bson.M{"status": string(model.StatusMatched)})
	return int(pending), int(matched)
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

func toParticipantDoc(p *model.Participant) *participantDoc {
	doc := &participantDoc{
		ID:                    p.ID,
		Name:                  p.Name,
		Email:                 p.Email,
		PracticeAreas:         p.PracticeAreas,
		Experience:            string(p.Experience),
		Locations:             p.Locations,
		UsesSeparateLocations: p.UsesSeparateLocations,
		Status:                string(p.Status),
		MatchGroupID:          p.MatchGroupID,
		Cycle:                 p.Cycle,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	for _, s := range p.Availability {
		doc.Availability = append(doc.Availability, string(s))
	}
	if len(p.SlotLocations) > 0 {
		doc.SlotLocations = make(map[string][]string, len(p.SlotLocations))
		for slot, locs := range p.SlotLocations {
			doc.SlotLocations[string(slot)] = locs
		}
	}
	return doc
}

func fromParticipantDoc(doc *participantDoc) *model.Participant {
	p := &model.Participant{
		ID:                    doc.ID,
		Name:                  doc.Name,
		Email:                 doc.Email,
		PracticeAreas:         doc.PracticeAreas,
		Experience:            model.ExperienceLevel(doc.Experience),
		Locations:             doc.Locations,
		UsesSeparateLocations: doc.UsesSeparateLocations,
		Status:                model.Status(doc.Status),
		MatchGroupID:          doc.MatchGroupID,
		Cycle:                 doc.Cycle,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}
	for _, s := range doc.Availability {
		p.Availability = append(p.Availability, model.Slot(s))
	}
	if len(doc.SlotLocations) > 0 {
		p.SlotLocations = make(map[model.Slot][]string, len(doc.SlotLocations))
		for slot, locs := range doc.SlotLocations {
			p.SlotLocations[model.Slot(slot)] = locs
		}
	}
	return p
}

func toGroupDoc(g *model.MatchGroup) *groupDoc {
	return &groupDoc{
		ID:          g.ID,
		Cycle:       g.Cycle,
		Slot:        string(g.Slot),
		Location:    g.Location,
		MemberIDs:   g.MemberIDs,
		IsFinalized: g.IsFinalized,
		MeetingTime: g.MeetingTime,
		Venue:       g.Venue,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func fromGroupDoc(doc *groupDoc) *model.MatchGroup {
	return &model.MatchGroup{
		ID:          doc.ID,
		Cycle:       doc.Cycle,
		Slot:        model.Slot(doc.Slot),
		Location:    doc.Location,
		MemberIDs:   doc.MemberIDs,
		IsFinalized: doc.IsFinalized,
		MeetingTime: doc.MeetingTime,
		Venue:       doc.Venue,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
