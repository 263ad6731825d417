package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) BookSlot(ctx context.Context, slotID string, a *models.Appointment) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var sl models.Slot
		err := s.slots.FindOneAndDelete(sc, bson.M{"_id": slotID, "doctor_id": a.DoctorID}).Decode(&sl)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSlotUnavailable
		}
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		a.DateTime = sl.DateTime
		a.CreatedAt, a.UpdatedAt = now, now
		_, err = s.appointments.InsertOne(sc, a)
		return nil, err
	})
	if errors.Is(err, models.ErrSlotUnavailable) {
		return err
	}
	return mapErr(err)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentView, error) {
	filter := bson.M{}
	if f.DoctorID != "" {
		filter["doctor_id"] = f.DoctorID
	}
	if f.PatientID != "" {
		filter["patient_id"] = f.PatientID
	}
	dir := -1
	if f.Order == models.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: dir}, {Key: "_id", Value: 1}})

	cur, err := s.appointments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apts []models.Appointment
	if err := cur.All(ctx, &apts); err != nil {
		return nil, err
	}

	phones, err := s.phones(ctx, apts)
	if err != nil {
		return nil, err
	}
	out := make([]models.AppointmentView, 0, len(apts))
	for _, a := range apts {
		out = append(out, models.AppointmentView{Appointment: a, PatientPhone: phones[a.PatientID]})
	}
	return out, nil
}

// phones looks up the patient phone for each appointment in one query.
func (s *Store) phones(ctx context.Context, apts []models.Appointment) (map[string]string, error) {
	out := map[string]string{}
	if len(apts) == 0 {
		return out, nil
	}
	seen := map[string]bool{}
	ids := bson.A{}
	for _, a := range apts {
		if !seen[a.PatientID] {
			seen[a.PatientID] = true
			ids = append(ids, a.PatientID)
		}
	}
	opts := options.Find().SetProjection(bson.M{"phone": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Phone string `bson:"phone"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Phone
	}
	return out, cur.Err()
}

func (s *Store) TransitionStatus(ctx context.Context, id string, from, to models.Status) error {
	res, err := s.appointments.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := s.appointments.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}
