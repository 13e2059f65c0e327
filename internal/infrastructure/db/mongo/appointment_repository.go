package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

const (
	collectionAppointments = "appointments"
	slotIndexName          = "slot_key_1"
)

// appointmentDoc carries slot_key only while the appointment holds its slot,
// so the partial unique index ignores cancelled appointments.
type appointmentDoc struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty"`
	PatientID       primitive.ObjectID    `bson:"patient_id"`
	PsychologistID  string                `bson:"psychologist_id"`
	AppointmentDate time.Time             `bson:"appointment_date"`
	Duration        int                   `bson:"duration"`
	Type            string                `bson:"type"`
	Status          string                `bson:"status"`
	Notes           string                `bson:"notes,omitempty"`
	Symptoms        []string              `bson:"symptoms,omitempty"`
	TreatmentPlan   *domain.TreatmentPlan `bson:"treatment_plan,omitempty"`
	SlotKey         string                `bson:"slot_key,omitempty"`
	CreatedAt       time.Time             `bson:"created_at"`
	UpdatedAt       time.Time             `bson:"updated_at"`
}

func toAppointmentDoc(a *domain.Appointment) (appointmentDoc, error) {
	patientID, err := objectID(a.PatientID)
	if err != nil {
		return appointmentDoc{}, err
	}
	doc := appointmentDoc{
		PatientID:       patientID,
		PsychologistID:  a.PsychologistID,
		AppointmentDate: domain.NormalizeSlotTime(a.AppointmentDate),
		Duration:        a.Duration,
		Type:            string(a.Type),
		Status:          string(a.Status),
		Notes:           a.Notes,
		Symptoms:        a.Symptoms,
		TreatmentPlan:   a.TreatmentPlan,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.HoldsSlot() {
		doc.SlotKey = domain.SlotKey(a.PsychologistID, a.AppointmentDate)
	}
	return doc, nil
}

func (d appointmentDoc) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:              d.ID.Hex(),
		PatientID:       d.PatientID.Hex(),
		PsychologistID:  d.PsychologistID,
		AppointmentDate: d.AppointmentDate.UTC(),
		Duration:        d.Duration,
		Type:            domain.AppointmentType(d.Type),
		Status:          domain.AppointmentStatus(d.Status),
		Notes:           d.Notes,
		Symptoms:        d.Symptoms,
		TreatmentPlan:   d.TreatmentPlan,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func appointmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "slot_key", Value: 1}},
			Options: options.Index().
				SetName(slotIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"slot_key": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		{Keys: bson.D{{Key: "psychologist_id", Value: 1}, {Key: "appointment_date", Value: 1}}},
	}
}

type AppointmentRepository struct {
	col *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{col: db.Collection(collectionAppointments)}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	doc, err := toAppointmentDoc(a)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(opCtx, doc); err != nil {
		return nil, r.writeError(ctx, err, a, "")
	}
	return doc.toDomain(), nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc appointmentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, translate(err, "appointment")
	}
	return doc.toDomain(), nil
}

// List returns every appointment ordered by date.
func (r *AppointmentRepository) List(ctx context.Context) ([]*domain.Appointment, error) {
	return r.find(ctx, bson.M{})
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	oid, err := objectID(patientID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"patient_id": oid})
}

func (r *AppointmentRepository) Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	oid, err := objectID(a.ID)
	if err != nil {
		return nil, err
	}
	doc, err := toAppointmentDoc(a)
	if err != nil {
		return nil, err
	}
	doc.ID = oid

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(opCtx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, r.writeError(ctx, err, a, a.ID)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrAppointmentNotFound
	}
	return doc.toDomain(), nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err, "appointment")
	}
	if res.DeletedCount == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) FindActiveAtSlot(ctx context.Context, psychologistID string, at time.Time, excludeID string) (*domain.Appointment, error) {
	filter := bson.M{"slot_key": domain.SlotKey(psychologistID, at)}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc appointmentDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translate(err, "appointment")
	}
	return doc.toDomain(), nil
}

// writeError translates a failed write. A slot_key violation means another
// writer won the race after the service's check; the holder is looked up so
// the conflict still names it.
func (r *AppointmentRepository) writeError(ctx context.Context, err error, a *domain.Appointment, excludeID string) error {
	err = translate(err, "appointment")
	if !errors.Is(err, domain.ErrSlotTaken) {
		return err
	}
	holder, findErr := r.FindActiveAtSlot(ctx, a.PsychologistID, a.AppointmentDate, excludeID)
	if findErr != nil || holder == nil {
		return domain.NewSlotConflict("")
	}
	return domain.NewSlotConflict(holder.ID)
}

func (r *AppointmentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "appointment_date", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "appointment")
	}
	defer cur.Close(ctx)

	var docs []appointmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "appointment")
	}
	out := make([]*domain.Appointment, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Clear removes every appointment. Used by the seed command only.
func (r *AppointmentRepository) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return translate(err, "appointment")
}
