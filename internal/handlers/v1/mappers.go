package v1

import (
	api "github.com/clipforge/clipforge/api/v1"
	"github.com/clipforge/clipforge/internal/store/model"
)

func userToApi(u *model.User) api.User {
	return api.User{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func jobToApi(j *model.Job) api.Job {
	video := j.Video.Data

	// result is always an array on the wire, empty until the worker
	// populated the clips variant.
	clips := []api.Clip{}
	if j.Result != nil && j.Result.Data.Kind == model.ResultKindClips {
		for _, c := range j.Result.Data.Clips {
			clips = append(clips, api.Clip{
				ClipUrl:   c.ClipUrl,
				StartTime: c.StartTime,
				EndTime:   c.EndTime,
				Duration:  c.Duration,
			})
		}
	}

	return api.Job{
		ID:     j.ID.String(),
		Status: j.Status,
		Video: api.Video{
			Url:      video.Url,
			FileName: video.FileName,
			Size:     video.Size,
			Type:     video.Type,
			Duration: video.Duration,
			Source:   video.Source,
		},
		Result:    clips,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func jobListToApi(jobs model.JobList) []api.Job {
	out := make([]api.Job, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobToApi(&jobs[i]))
	}
	return out
}
