// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// SeedData loads a demo fabrication project. It does nothing when the admin account already exists.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	if existing, _ := repos.UserRepo.FindByEmail(ctx, "admin@fabtrack.local"); existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating demo fabrication data...")

	// ============================================
	// CREATE USERS
	// ============================================
	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] ❌ Failed to hash password: %v", err)
		return
	}

	admin := &repository.User{
		Email:    "admin@fabtrack.local",
		Password: string(password),
		Name:     "Firm Admin",
		Role:     types.RoleAdmin,
	}
	pm := &repository.User{
		Email:    "pm@fabtrack.local",
		Password: string(password),
		Name:     "Priya Menon",
		Role:     types.RoleProjectManager,
	}
	docController := &repository.User{
		Email:    "docs@fabtrack.local",
		Password: string(password),
		Name:     "Dev Patel",
		Role:     types.RoleViewer,
	}
	welder := &repository.User{
		Email:    "shop@fabtrack.local",
		Password: string(password),
		Name:     "Sam Rivera",
		Role:     types.RoleViewer,
	}
	for _, u := range []*repository.User{admin, pm, docController, welder} {
		if err := repos.UserRepo.Create(ctx, u); err != nil {
			log.Printf("[Seed] ❌ Failed to create user %s: %v", u.Email, err)
			return
		}
	}
	log.Printf("✅ Created 4 users: admin, project manager, document controller, shop editor")

	// ============================================
	// PROJECT
	// ============================================
	deadline := time.Now().AddDate(0, 4, 0)
	project := &repository.Project{
		Name:       "Refinery Expansion Phase 2",
		ClientName: "Gulf Petrochem",
		Location:   stringPtr("Jamnagar Yard 3"),
		PONumber:   stringPtr("PO-2024-0117"),
		Deadline:   &deadline,
		Status:     types.ProjectActive,
		ManagerID:  &pm.ID,
		CreatedBy:  pm.ID,
	}
	if err := repos.ProjectRepo.Create(ctx, project); err != nil {
		log.Printf("[Seed] ❌ Failed to create project: %v", err)
		return
	}

	// ============================================
	// ROSTER
	// ============================================
	members := []*repository.ProjectMember{
		{Name: pm.Name, Email: pm.Email, Role: types.RoleProjectManager, EquipmentAssignments: []string{types.AllEquipment}},
		{Name: docController.Name, Email: docController.Email, Role: types.RoleVDCRManager, Position: stringPtr("Document Controller"), EquipmentAssignments: []string{types.AllEquipment}},
		{Name: welder.Name, Email: welder.Email, Role: types.RoleEditor, Position: stringPtr("Shop Supervisor"), EquipmentAssignments: []string{"HX-101"}},
		{Name: "Client Inspector", Email: "inspector@gulfpetrochem.example", Role: types.RoleViewer, Status: types.MemberInvited, EquipmentAssignments: []string{"V-201"}},
	}
	seededMembers := 0
	for _, m := range members {
		m.ProjectID = project.ID
		if m.Status == "" {
			m.Status = types.MemberActive
		}
		if err := repos.ProjectRepo.AddMember(ctx, m); err != nil {
			log.Printf("[Seed] ❌ Failed to add member %s: %v", m.Email, err)
			continue
		}
		seededMembers++
	}

	// ============================================
	// EQUIPMENT
	// ============================================
	equipment := []*repository.Equipment{
		{Name: "Shell & Tube Heat Exchanger", Type: "Heat Exchanger", TagNumber: "HX-101", Status: types.EquipmentInProgress, Progress: 65, ProgressPhase: stringPtr("Tube bundle insertion"), Supervisor: stringPtr(welder.Name)},
		{Name: "Flash Drum", Type: "Pressure Vessel", TagNumber: "V-201", Status: types.EquipmentPending, Progress: 10, ProgressPhase: stringPtr("Plate cutting")},
		{Name: "Stripper Column", Type: "Column", TagNumber: "C-301", Status: types.EquipmentDelayed, Progress: 35, Notes: stringPtr("Waiting on forged nozzles")},
	}
	seededEquipment := 0
	for _, e := range equipment {
		e.ProjectID = project.ID
		e.CreatedBy = pm.ID
		if err := repos.EquipmentRepo.Create(ctx, e); err != nil {
			log.Printf("[Seed] ❌ Failed to create equipment %s: %v", e.TagNumber, err)
			continue
		}
		seededEquipment++
	}

	// ============================================
	// VDCR
	// ============================================
	daysAgo := func(n int) *time.Time {
		t := time.Now().AddDate(0, 0, -n)
		return &t
	}
	records := []*repository.VDCRRecord{
		{SrNo: "1", DocumentName: "General Arrangement Drawing", EquipmentTagNumbers: []string{"HX-101"}, Revision: stringPtr("R2"), Status: types.VDCRApproved, LastUpdate: daysAgo(12)},
		{SrNo: "2", DocumentName: "Welding Procedure Specification", EquipmentTagNumbers: []string{"HX-101", "V-201"}, Revision: stringPtr("R0"), Status: types.VDCRSentForApproval, LastUpdate: daysAgo(9)},
		{SrNo: "3", DocumentName: "Nozzle Orientation", EquipmentTagNumbers: []string{"V-201"}, Revision: stringPtr("R1"), Status: types.VDCRReceivedForComment, LastUpdate: daysAgo(3), Remarks: stringPtr("Client asked for N3 rotation")},
		{SrNo: "4", DocumentName: "Hydrotest Procedure", EquipmentTagNumbers: []string{"C-301"}, Status: types.VDCRPending, LastUpdate: daysAgo(0)},
	}
	seededRecords := 0
	for _, r := range records {
		r.ProjectID = project.ID
		r.UpdatedBy = &docController.ID
		if err := repos.VDCRRepo.Create(ctx, r); err != nil {
			log.Printf("[Seed] ❌ Failed to create document %q: %v", r.DocumentName, err)
			continue
		}
		seededRecords++
	}

	log.Printf("[Seed] ✅ Seeded project %q with %d members, %d equipment, %d documents",
		project.Name, seededMembers, seededEquipment, seededRecords)
	log.Println("[Seed] 🔑 Login with any @fabtrack.local account, password: password123")
}

func stringPtr(s string) *string {
	return &s
}
