package http

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/service"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Handlers serves the full REST contract against the in-memory dataset.
type Handlers struct {
	auth *service.AuthService
	data *Dataset
	log  *slog.Logger
}

func NewHandlers(auth *service.AuthService, data *Dataset, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{auth: auth, data: data, log: log}
}

// currentUser resolves the account behind the validated grant the middleware
// stored on the context.
func (h *Handlers) currentUser(c *gin.Context) *userRecord {
	address := c.GetString(ctxAddress)
	role := core.Role(c.GetString(ctxRole))
	return h.data.EnsureUser(address, role)
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// --- auth ---

func (h *Handlers) Nonce(c *gin.Context) {
	var req struct {
		EthAddress string `json:"eth_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.auth.CreateChallenge(c.Request.Context(), req.EthAddress)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ethereum address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": challenge.Nonce, "timestamp": challenge.Timestamp})
}

func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		EthAddress string `json:"eth_address" binding:"required"`
		Signature  string `json:"signature" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	access, refresh, role, err := h.auth.VerifyLogin(c.Request.Context(), req.EthAddress, req.Signature, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ethereum address"})
		case errors.Is(err, core.ErrInvalidNonce):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired nonce"})
		case errors.Is(err, core.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Verification failed"})
		}
		return
	}

	h.data.EnsureUser(req.EthAddress, role)
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh, "role": string(role)})
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		case errors.Is(err, core.ErrTokenInvalidated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token has been invalidated"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *Handlers) Logout(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.Refresh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// --- campaigns ---

func (h *Handlers) Campaigns(c *gin.Context) {
	status := c.Query("status")
	d := h.data
	d.mu.Lock()
	var rendered []map[string]any
	for i := len(d.campaigns) - 1; i >= 0; i-- {
		if matchStatus(d.campaigns[i], status) {
			rendered = append(rendered, d.renderCampaign(d.campaigns[i], false))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, paginate(rendered, pageParam(c), "campaigns"))
}

func (h *Handlers) MyCampaigns(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	rendered := []map[string]any{}
	for _, campaign := range d.campaigns {
		if dao := d.daoByID(campaign.DaoID); dao != nil && dao.CreatedBy == user.ID {
			rendered = append(rendered, d.renderCampaign(campaign, true))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

type campaignRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget" binding:"required"`
	Status      string          `json:"status"`
	Dao         int64           `json:"dao" binding:"required"`
}

func (h *Handlers) createCampaign(c *gin.Context, txHash string) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.daoByID(req.Dao) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "DAO not found"})
		return
	}

	status := core.CampaignStatus(req.Status)
	if status == "" {
		status = core.CampaignPlanning
	}
	campaign := &campaignRecord{
		ID:          d.id(),
		DaoID:       req.Dao,
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      status,
		TxHash:      txHash,
		CreatedAt:   timeNow(),
	}
	d.campaigns = append(d.campaigns, campaign)
	c.JSON(http.StatusCreated, d.renderCampaign(campaign, false))
}

func (h *Handlers) CreateCampaign(c *gin.Context) {
	h.createCampaign(c, "")
}

// CreateVerifiedCampaign requires the hash of the funding transfer. The
// devserver checks the hash shape only; chain verification is the real
// backend's job.
func (h *Handlers) CreateVerifiedCampaign(c *gin.Context) {
	var probe struct {
		TransactionHash string `json:"transaction_hash"`
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := jsonUnmarshal(body, &probe); err != nil || !txHashPattern.MatchString(probe.TransactionHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction hash"})
		return
	}

	restoreBody(c, body)
	h.createCampaign(c, probe.TransactionHash)
}

func (h *Handlers) CampaignsOverview(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	active, completed, totalTasks := 0, 0, 0
	total := decimal.Zero
	for _, campaign := range d.campaigns {
		switch campaign.Status {
		case core.CampaignActive:
			active++
		case core.CampaignCompleted:
			completed++
		}
		total = total.Add(campaign.Budget)
		totalTasks += len(d.campaignTasks(campaign.ID))
	}
	c.JSON(http.StatusOK, gin.H{
		"active_campaigns":    active,
		"completed_campaigns": completed,
		"total_budget":        total.String(),
		"total_tasks":         totalTasks,
	})
}

func (h *Handlers) CampaignTasks(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.campaignByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}
	rendered := []map[string]any{}
	for _, t := range d.campaignTasks(id) {
		rendered = append(rendered, d.renderTask(t))
	}
	c.JSON(http.StatusOK, rendered)
}

// --- tasks ---

func (h *Handlers) Tasks(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	var rendered []map[string]any
	open := 0
	totalRewards := decimal.Zero
	for i := len(d.tasks) - 1; i >= 0; i-- {
		t := d.tasks[i]
		rendered = append(rendered, d.renderTask(t))
		if t.Status == 0 {
			open++
		}
		totalRewards = totalRewards.Add(t.Reward.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	d.mu.Unlock()

	page := paginate(rendered, pageParam(c), "tasks")
	page["total_rewards"] = totalRewards.String()
	page["open_tasks"] = open
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) CreateTask(c *gin.Context) {
	var req struct {
		Description string          `json:"description" binding:"required"`
		Type        string          `json:"type" binding:"required"`
		Reward      decimal.Decimal `json:"reward" binding:"required"`
		Quantity    int             `json:"quantity" binding:"required"`
		Deadline    int64           `json:"deadline"`
		Campaign    int64           `json:"campaign" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.campaignByID(req.Campaign) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}
	task := &taskRecord{
		ID:          d.id(),
		CampaignID:  req.Campaign,
		Type:        core.TaskType(req.Type),
		Description: req.Description,
		Reward:      req.Reward,
		Quantity:    req.Quantity,
		Deadline:    req.Deadline,
		CreatedAt:   timeNow(),
	}
	d.tasks = append(d.tasks, task)
	c.JSON(http.StatusCreated, d.renderTask(task))
}

// SubmitTask accepts proof as multipart form data: text fields plus an
// optional uploaded file for image and video proofs.
func (h *Handlers) SubmitTask(c *gin.Context) {
	user := h.currentUser(c)

	taskID, err := strconv.ParseInt(c.PostForm("task_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task_id"})
		return
	}
	proofType := core.ProofType(c.PostForm("proof_type"))

	proofFile := ""
	if form, err := c.MultipartForm(); err == nil {
		for _, files := range form.File {
			if len(files) > 0 {
				proofFile = files[0].Filename
				break
			}
		}
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.taskByID(taskID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	sub := &submissionRecord{
		ID:        d.id(),
		TaskID:    taskID,
		UserID:    user.ID,
		Link:      c.PostForm("link"),
		ProofType: proofType,
		ProofText: c.PostForm("proof_text"),
		ProofFile: proofFile,
		Status:    core.SubmissionPending,
		CreatedAt: timeNow(),
	}
	d.submissions = append(d.submissions, sub)
	c.JSON(http.StatusCreated, d.renderSubmission(sub, false))
}

// --- daos ---

func (h *Handlers) DaoView(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	var rendered []map[string]any
	for _, dao := range d.daos {
		rendered = append(rendered, d.renderDao(dao, user))
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, paginate(rendered, pageParam(c), "dao-view"))
}

func (h *Handlers) FavoriteDaos(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	rendered := []map[string]any{}
	for _, dao := range d.daos {
		if d.favorites[user.ID][dao.ID] {
			rendered = append(rendered, d.renderDao(dao, user))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) MostActiveDaos(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	type daoActivity struct {
		dao   *daoRecord
		count int
	}
	activity := make([]daoActivity, 0, len(d.daos))
	for _, dao := range d.daos {
		n := 0
		for _, campaign := range d.campaigns {
			if campaign.DaoID == dao.ID && campaign.Status == core.CampaignActive {
				n++
			}
		}
		activity = append(activity, daoActivity{dao, n})
	}
	// Insertion sort is fine at devserver scale.
	for i := 1; i < len(activity); i++ {
		for j := i; j > 0 && activity[j].count > activity[j-1].count; j-- {
			activity[j], activity[j-1] = activity[j-1], activity[j]
		}
	}
	rendered := []map[string]any{}
	for i, a := range activity {
		if i == 5 {
			break
		}
		rendered = append(rendered, d.renderDao(a.dao, user))
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) MyDaos(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	rendered := []map[string]any{}
	for _, dao := range d.daos {
		if dao.CreatedBy == user.ID {
			rendered = append(rendered, d.renderDao(dao, user))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) daoFromForm(c *gin.Context, dao *daoRecord) bool {
	name := c.PostForm("name")
	if name == "" && dao.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return false
	}
	if name != "" {
		dao.Name = name
	}
	if v := c.PostForm("description"); v != "" {
		dao.Description = v
	}
	if v := c.PostForm("website"); v != "" {
		dao.Website = v
	}
	if v := c.PostForm("network"); v != "" {
		network, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid network"})
			return false
		}
		dao.Network = network
	}
	if v := c.PostForm("social_links"); v != "" {
		links := map[string]string{}
		if err := jsonUnmarshal([]byte(v), &links); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid social links"})
			return false
		}
		dao.SocialLinks = links
	}
	if form, err := c.MultipartForm(); err == nil {
		for _, files := range form.File {
			if len(files) > 0 {
				dao.Image = files[0].Filename
				break
			}
		}
	}
	return true
}

func (h *Handlers) RegisterDao(c *gin.Context) {
	user := h.currentUser(c)
	dao := &daoRecord{CreatedBy: user.ID, CreatedAt: timeNow()}
	if !h.daoFromForm(c, dao) {
		return
	}

	d := h.data
	d.mu.Lock()
	dao.ID = d.id()
	d.daos = append(d.daos, dao)
	rendered := d.renderDao(dao, user)
	d.mu.Unlock()
	c.JSON(http.StatusCreated, rendered)
}

func (h *Handlers) EditDao(c *gin.Context) {
	user := h.currentUser(c)
	id, ok := idParam(c)
	if !ok {
		return
	}

	d := h.data
	d.mu.Lock()
	dao := d.daoByID(id)
	if dao == nil {
		d.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "DAO not found"})
		return
	}
	if dao.CreatedBy != user.ID {
		d.mu.Unlock()
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your DAO"})
		return
	}
	if !h.daoFromForm(c, dao) {
		d.mu.Unlock()
		return
	}
	rendered := d.renderDao(dao, user)
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) DeleteDao(c *gin.Context) {
	user := h.currentUser(c)
	id, ok := idParam(c)
	if !ok {
		return
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, dao := range d.daos {
		if dao.ID != id {
			continue
		}
		if dao.CreatedBy != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your DAO"})
			return
		}
		d.daos = append(d.daos[:i], d.daos[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "DAO not found"})
}

// --- submissions ---

func (h *Handlers) SubmissionsHistory(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	var rendered []map[string]any
	for i := len(d.submissions) - 1; i >= 0; i-- {
		if d.submissions[i].UserID == user.ID {
			rendered = append(rendered, d.renderSubmission(d.submissions[i], false))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, paginate(rendered, pageParam(c), "submissions-history"))
}

func (h *Handlers) SubmissionsOverview(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	pending, approved, rejected := 0, 0, 0
	for _, s := range d.submissions {
		if s.UserID != user.ID {
			continue
		}
		switch s.Status {
		case core.SubmissionPending:
			pending++
		case core.SubmissionApproved:
			approved++
		case core.SubmissionRejected:
			rejected++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"pending_submissions":  pending,
		"approved_submissions": approved,
		"rejected_submissions": rejected,
	})
}

func (h *Handlers) ModerationHistory(c *gin.Context) {
	status := c.Query("status")
	proofType := c.Query("proof_type")

	d := h.data
	d.mu.Lock()
	var rendered []map[string]any
	pending, approved, rejected := 0, 0, 0
	for i := len(d.submissions) - 1; i >= 0; i-- {
		s := d.submissions[i]
		switch s.Status {
		case core.SubmissionPending:
			pending++
		case core.SubmissionApproved:
			approved++
		case core.SubmissionRejected:
			rejected++
		}
		if status != "" && string(s.Status) != status {
			continue
		}
		if proofType != "" && string(s.ProofType) != proofType {
			continue
		}
		rendered = append(rendered, d.renderSubmission(s, true))
	}
	d.mu.Unlock()

	page := paginate(rendered, pageParam(c), "moderation/submissions-history")
	page["pending_count"] = pending
	page["approved_count"] = approved
	page["rejected_count"] = rejected
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) SubmissionDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	sub := d.submissionByID(id)
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	c.JSON(http.StatusOK, d.renderSubmission(sub, true))
}

func (h *Handlers) GradeSubmission(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status   string `json:"status" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	status := core.SubmissionStatus(req.Status)
	if status != core.SubmissionApproved && status != core.SubmissionRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	sub := d.submissionByID(id)
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	d.grade(sub, status, req.Feedback)
	c.JSON(http.StatusOK, d.renderSubmission(sub, true))
}

// --- dashboard ---

func (h *Handlers) StatsOverview(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	shillers := 0
	for _, u := range d.users {
		if u.Approved > 0 {
			shillers++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total_campaigns": len(d.campaigns),
		"total_tasks":     len(d.tasks),
		"active_shillers": shillers,
		"shill_price_usd": "0.042",
	})
}

func (h *Handlers) CampaignsGraph(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []gin.H{}
	for _, campaign := range d.campaigns {
		tasks := d.campaignTasks(campaign.ID)
		subs := 0
		for _, t := range tasks {
			subs += d.taskSubmissionCount(t.ID)
		}
		out = append(out, gin.H{"name": campaign.Name, "tasks": len(tasks), "submissions": subs})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) RewardsGraph(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	buckets := map[string]decimal.Decimal{}
	order := []string{}
	for _, r := range d.rewards {
		month := r.CreatedAt.UTC().Format("Jan 2006")
		if _, ok := buckets[month]; !ok {
			order = append(order, month)
		}
		buckets[month] = buckets[month].Add(r.Amount)
	}
	out := []gin.H{}
	for _, month := range order {
		out = append(out, gin.H{"month": month, "rewards": buckets[month].String()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) TierGraph(c *gin.Context) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := map[core.Tier]int{}
	for _, u := range d.users {
		counts[u.Tier]++
	}
	out := []gin.H{}
	for _, tier := range []core.Tier{core.TierBronze, core.TierSilver, core.TierGold, core.TierPlatinum, core.TierDiamond} {
		out = append(out, gin.H{"name": string(tier), "value": counts[tier]})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) topShillers(c *gin.Context, extended bool) {
	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()

	shillers := []*userRecord{}
	for _, u := range d.users {
		if u.Approved > 0 {
			shillers = append(shillers, u)
		}
	}
	for i := 1; i < len(shillers); i++ {
		for j := i; j > 0 && shillers[j].Approved > shillers[j-1].Approved; j-- {
			shillers[j], shillers[j-1] = shillers[j-1], shillers[j]
		}
	}
	if !extended && len(shillers) > 5 {
		shillers = shillers[:5]
	}

	out := []gin.H{}
	for _, u := range shillers {
		total := u.Approved + u.Rejected
		rate := 0.0
		if total > 0 {
			rate = float64(u.Approved) / float64(total)
		}
		rewards := decimal.Zero
		for _, r := range d.rewards {
			if r.UserID == u.ID {
				rewards = rewards.Add(r.Amount)
			}
		}
		entry := gin.H{
			"id":                         u.ID,
			"username":                   u.Username,
			"image":                      u.Image,
			"tier":                       string(u.Tier),
			"approval_rate":              rate,
			"approved_submissions_count": u.Approved,
			"growth":                     0.0,
			"total_rewards":              rewards.String(),
		}
		if extended {
			entry["eth_address"] = u.Address
			entry["total_submissions_count"] = total
			entry["is_active"] = true
			entry["role"] = string(u.Role)
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) TopShillers(c *gin.Context)         { h.topShillers(c, false) }
func (h *Handlers) TopShillersExtended(c *gin.Context) { h.topShillers(c, true) }

// --- users ---

func (h *Handlers) Me(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	rendered := d.renderUser(user)
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) UpdateUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	user.Username = req.Username
	rendered := d.renderUser(user)
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) UpdateUserImage(c *gin.Context) {
	user := h.currentUser(c)
	filename := ""
	if form, err := c.MultipartForm(); err == nil {
		for _, files := range form.File {
			if len(files) > 0 {
				filename = files[0].Filename
				break
			}
		}
	}
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}
	d := h.data
	d.mu.Lock()
	user.Image = filename
	rendered := d.renderUser(user)
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) RemoveUserImage(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	user.Image = ""
	rendered := d.renderUser(user)
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}

func (h *Handlers) ToggleFavoriteDao(c *gin.Context) {
	user := h.currentUser(c)
	id, ok := idParam(c)
	if !ok {
		return
	}

	d := h.data
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.daoByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "DAO not found"})
		return
	}
	if d.favorites[user.ID] == nil {
		d.favorites[user.ID] = make(map[int64]bool)
	}
	d.favorites[user.ID][id] = !d.favorites[user.ID][id]
	c.JSON(http.StatusOK, gin.H{"is_favorited": d.favorites[user.ID][id]})
}

func (h *Handlers) MyRewards(c *gin.Context) {
	user := h.currentUser(c)
	d := h.data
	d.mu.Lock()
	rendered := []map[string]any{}
	for i := len(d.rewards) - 1; i >= 0; i-- {
		if d.rewards[i].UserID == user.ID {
			rendered = append(rendered, d.renderReward(d.rewards[i]))
		}
	}
	d.mu.Unlock()
	c.JSON(http.StatusOK, rendered)
}
