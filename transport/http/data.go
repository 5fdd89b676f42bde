package http

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shilldao/herald/core"
)

// pageSize matches the backend's fixed page length.
const pageSize = 10

type userRecord struct {
	ID       int64
	Address  string
	Username string
	Tier     core.Tier
	Image    string
	Role     core.Role
	Approved int
	Rejected int
}

type daoRecord struct {
	ID          int64
	Name        string
	Image       string
	Description string
	Website     string
	Network     int64
	SocialLinks map[string]string
	CreatedBy   int64
	Balance     decimal.Decimal
	CreatedAt   time.Time
}

type campaignRecord struct {
	ID          int64
	DaoID       int64
	Name        string
	Description string
	Budget      decimal.Decimal
	Status      core.CampaignStatus
	TxHash      string
	Progress    float64
	CreatedAt   time.Time
}

type taskRecord struct {
	ID          int64
	CampaignID  int64
	Type        core.TaskType
	Description string
	Reward      decimal.Decimal
	Quantity    int
	Deadline    int64
	Status      int
	CreatedAt   time.Time
}

type submissionRecord struct {
	ID         int64
	TaskID     int64
	UserID     int64
	Link       string
	ProofType  core.ProofType
	ProofText  string
	ProofFile  string
	Status     core.SubmissionStatus
	Feedback   string
	Multiplier int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type rewardRecord struct {
	ID        int64
	UserID    int64
	Amount    decimal.Decimal
	Campaign  string
	Task      string
	CreatedAt time.Time
}

// Dataset is the devserver's in-memory world. All access goes through its
// methods; renders are plain maps with snake_case keys, the backend's wire
// dialect.
type Dataset struct {
	mu          sync.Mutex
	nextID      int64
	users       map[string]*userRecord
	daos        []*daoRecord
	campaigns   []*campaignRecord
	tasks       []*taskRecord
	submissions []*submissionRecord
	rewards     []*rewardRecord
	favorites   map[int64]map[int64]bool
}

func NewDataset() *Dataset {
	d := &Dataset{
		users:     make(map[string]*userRecord),
		favorites: make(map[int64]map[int64]bool),
	}
	d.seed()
	return d
}

func (d *Dataset) id() int64 {
	d.nextID++
	return d.nextID
}

// seed loads a small believable world so the dashboard has something to show
// on first run.
func (d *Dataset) seed() {
	now := time.Now()

	dao := &daoRecord{
		ID:          d.id(),
		Name:        "ShillDAO",
		Description: "The DAO that pays you to shill.",
		Website:     "https://shilldao.xyz",
		Network:     1,
		SocialLinks: map[string]string{"twitter": "https://twitter.com/shilldao"},
		Balance:     decimal.NewFromInt(250_000),
		CreatedAt:   now.AddDate(0, -6, 0),
	}
	d.daos = append(d.daos, dao)

	statuses := []core.CampaignStatus{
		core.CampaignActive, core.CampaignActive, core.CampaignPlanning, core.CampaignCompleted,
	}
	for i, status := range statuses {
		c := &campaignRecord{
			ID:          d.id(),
			DaoID:       dao.ID,
			Name:        fmt.Sprintf("Season %d Awareness Drive", i+1),
			Description: "Spread the word across socials and forums.",
			Budget:      decimal.NewFromInt(int64(5000 * (i + 1))),
			Status:      status,
			Progress:    float64(i) * 0.25,
			CreatedAt:   now.AddDate(0, -i, 0),
		}
		d.campaigns = append(d.campaigns, c)

		d.tasks = append(d.tasks, &taskRecord{
			ID:          d.id(),
			CampaignID:  c.ID,
			Type:        core.TaskSocialPost,
			Description: "Post a thread about the latest release.",
			Reward:      decimal.NewFromInt(50),
			Quantity:    20,
			Deadline:    now.AddDate(0, 1, 0).Unix(),
			CreatedAt:   c.CreatedAt,
		}, &taskRecord{
			ID:          d.id(),
			CampaignID:  c.ID,
			Type:        core.TaskDiscussion,
			Description: "Start a governance discussion and link it.",
			Reward:      decimal.NewFromInt(120),
			Quantity:    5,
			Deadline:    now.AddDate(0, 1, 0).Unix(),
			CreatedAt:   c.CreatedAt,
		})
	}
}

// EnsureUser returns the account for a wallet address, creating it on first
// sight the way the backend does at verify time.
func (d *Dataset) EnsureUser(address string, role core.Role) *userRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	addr := core.NormalizeAddress(address)
	if u, ok := d.users[addr]; ok {
		return u
	}
	u := &userRecord{
		ID:      d.id(),
		Address: addr,
		Tier:    core.TierBronze,
		Role:    role,
	}
	d.users[addr] = u
	return u
}

func (d *Dataset) userByID(id int64) *userRecord {
	for _, u := range d.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Dataset) daoByID(id int64) *daoRecord {
	for _, dao := range d.daos {
		if dao.ID == id {
			return dao
		}
	}
	return nil
}

func (d *Dataset) campaignByID(id int64) *campaignRecord {
	for _, c := range d.campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (d *Dataset) taskByID(id int64) *taskRecord {
	for _, t := range d.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (d *Dataset) submissionByID(id int64) *submissionRecord {
	for _, s := range d.submissions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (d *Dataset) campaignTasks(campaignID int64) []*taskRecord {
	var out []*taskRecord
	for _, t := range d.tasks {
		if t.CampaignID == campaignID {
			out = append(out, t)
		}
	}
	return out
}

func (d *Dataset) taskSubmissionCount(taskID int64) int {
	n := 0
	for _, s := range d.submissions {
		if s.TaskID == taskID {
			n++
		}
	}
	return n
}

// paginate slices a rendered list into the {count,next,previous,results}
// envelope. next and previous carry the neighbouring page numbers as query
// strings.
func paginate(items []map[string]any, page int, path string) map[string]any {
	if page < 1 {
		page = 1
	}
	count := len(items)
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	var next, previous any
	if end < count {
		next = fmt.Sprintf("%s?page=%d", path, page+1)
	}
	if page > 1 {
		previous = fmt.Sprintf("%s?page=%d", path, page-1)
	}
	return map[string]any{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  items[start:end],
	}
}

func isoTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (d *Dataset) renderDaoSummary(id int64) map[string]any {
	dao := d.daoByID(id)
	if dao == nil {
		return nil
	}
	return map[string]any{"name": dao.Name, "image": dao.Image}
}

func (d *Dataset) renderCampaign(c *campaignRecord, withTasks bool) map[string]any {
	tasks := d.campaignTasks(c.ID)
	out := map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"dao":         d.renderDaoSummary(c.DaoID),
		"progress":    c.Progress,
		"total_tasks": len(tasks),
		"budget":      c.Budget.String(),
		"status":      string(c.Status),
		"created_at":  isoTime(c.CreatedAt),
	}
	if withTasks {
		rendered := make([]map[string]any, 0, len(tasks))
		for _, t := range tasks {
			rendered = append(rendered, d.renderTask(t))
		}
		out["tasks"] = rendered
	}
	return out
}

func (d *Dataset) renderTask(t *taskRecord) map[string]any {
	campaign := ""
	if c := d.campaignByID(t.CampaignID); c != nil {
		campaign = c.Name
	}
	return map[string]any{
		"id":                t.ID,
		"type":              string(t.Type),
		"description":       t.Description,
		"reward":            t.Reward.String(),
		"quantity":          t.Quantity,
		"deadline":          t.Deadline,
		"campaign":          campaign,
		"submissions_count": d.taskSubmissionCount(t.ID),
		"status":            t.Status,
		"created_at":        t.CreatedAt.Unix(),
	}
}

func (d *Dataset) renderDao(dao *daoRecord, viewer *userRecord) map[string]any {
	out := map[string]any{
		"id":           dao.ID,
		"name":         dao.Name,
		"image":        dao.Image,
		"description":  dao.Description,
		"website":      dao.Website,
		"social_links": dao.SocialLinks,
		"network":      dao.Network,
		"created_by":   dao.CreatedBy,
		"balance":      dao.Balance.String(),
		"created_at":   isoTime(dao.CreatedAt),
	}
	if viewer != nil {
		out["is_favorited"] = d.favorites[viewer.ID][dao.ID]
	}
	return out
}

func (d *Dataset) renderUser(u *userRecord) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"tier":        string(u.Tier),
		"eth_address": u.Address,
		"image":       u.Image,
		"approved":    u.Approved,
		"rejected":    u.Rejected,
		"role":        string(u.Role),
	}
}

func (d *Dataset) renderSubmission(s *submissionRecord, withUser bool) map[string]any {
	task := d.taskByID(s.TaskID)
	out := map[string]any{
		"id":         s.ID,
		"status":     string(s.Status),
		"link":       s.Link,
		"proof_type": string(s.ProofType),
		"created_at": isoTime(s.CreatedAt),
	}
	if s.ProofText != "" {
		out["proof_text"] = s.ProofText
	}
	switch {
	case s.ProofFile != "" && s.ProofType == core.ProofImage:
		out["proof_image"] = s.ProofFile
	case s.ProofFile != "" && s.ProofType == core.ProofVideo:
		out["proof_video"] = s.ProofFile
	}
	if s.Feedback != "" {
		out["feedback"] = s.Feedback
	}
	if s.Multiplier > 0 {
		out["multiplier"] = s.Multiplier
	}
	if !s.UpdatedAt.IsZero() {
		out["updated_at"] = isoTime(s.UpdatedAt)
	}
	if task != nil {
		out["description"] = task.Description
		if c := d.campaignByID(task.CampaignID); c != nil {
			out["campaign"] = c.Name
			if dao := d.daoByID(c.DaoID); dao != nil {
				out["dao_name"] = dao.Name
			}
		}
	}
	if withUser {
		if u := d.userByID(s.UserID); u != nil {
			out["user"] = d.renderUser(u)
		}
	}
	return out
}

func (d *Dataset) renderReward(r *rewardRecord) map[string]any {
	return map[string]any{
		"id":         r.ID,
		"amount":     r.Amount.String(),
		"campaign":   r.Campaign,
		"task":       r.Task,
		"created_at": isoTime(r.CreatedAt),
	}
}

// grade applies a moderator verdict and, on approval, books the reward.
func (d *Dataset) grade(sub *submissionRecord, status core.SubmissionStatus, feedback string) {
	sub.Status = status
	sub.Feedback = feedback
	sub.UpdatedAt = time.Now()

	user := d.userByID(sub.UserID)
	task := d.taskByID(sub.TaskID)
	if user == nil {
		return
	}
	switch status {
	case core.SubmissionApproved:
		user.Approved++
		if task != nil {
			campaign := ""
			if c := d.campaignByID(task.CampaignID); c != nil {
				campaign = c.Name
			}
			d.rewards = append(d.rewards, &rewardRecord{
				ID:        d.id(),
				UserID:    user.ID,
				Amount:    task.Reward,
				Campaign:  campaign,
				Task:      task.Description,
				CreatedAt: time.Now(),
			})
		}
	case core.SubmissionRejected:
		user.Rejected++
	}
	user.Tier = tierFor(user.Approved)
}

func tierFor(approved int) core.Tier {
	switch {
	case approved >= 100:
		return core.TierDiamond
	case approved >= 50:
		return core.TierPlatinum
	case approved >= 25:
		return core.TierGold
	case approved >= 10:
		return core.TierSilver
	default:
		return core.TierBronze
	}
}

func matchStatus(c *campaignRecord, status string) bool {
	return status == "" || strings.EqualFold(string(c.Status), status)
}
