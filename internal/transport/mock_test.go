package transport

import (
	"context"

	"file-utils-server/internal/models"
)

type mockFileUtilityService struct {
	ResolveNameFunc   func(req models.ResolveNameRequest) (*models.ResolveNameResponse, *models.ErrorDetail)
	ListDirectoryFunc func(req models.ListDirectoryRequest) (*models.ListDirectoryResponse, *models.ErrorDetail)
	HashFileFunc      func(req models.HashFileRequest) (*models.HashFileResponse, *models.ErrorDetail)
	BackupFileFunc    func(req models.BackupFileRequest) (*models.BackupFileResponse, *models.ErrorDetail)
	CopyFileFunc      func(req models.CopyFileRequest) (*models.CopyFileResponse, *models.ErrorDetail)
	RenameFileFunc    func(req models.RenameFileRequest) (*models.RenameFileResponse, *models.ErrorDetail)
	RemoveFileFunc    func(req models.RemoveFileRequest) (*models.RemoveFileResponse, *models.ErrorDetail)
	ExistsFunc        func(req models.ExistsRequest) (*models.ExistsResponse, *models.ErrorDetail)
	HashDataFunc      func(req models.HashDataRequest) (*models.HashDataResponse, *models.ErrorDetail)
}

func (m *mockFileUtilityService) ResolveName(_ context.Context, req models.ResolveNameRequest) (*models.ResolveNameResponse, *models.ErrorDetail) {
	if m.ResolveNameFunc != nil {
		return m.ResolveNameFunc(req)
	}
	return &models.ResolveNameResponse{}, nil
}

func (m *mockFileUtilityService) ListDirectory(_ context.Context, req models.ListDirectoryRequest) (*models.ListDirectoryResponse, *models.ErrorDetail) {
	if m.ListDirectoryFunc != nil {
		return m.ListDirectoryFunc(req)
	}
	return &models.ListDirectoryResponse{Directory: ".", Mode: models.ListModeFlat, Entries: []models.EntryInfo{}}, nil
}

func (m *mockFileUtilityService) HashFile(_ context.Context, req models.HashFileRequest) (*models.HashFileResponse, *models.ErrorDetail) {
	if m.HashFileFunc != nil {
		return m.HashFileFunc(req)
	}
	return &models.HashFileResponse{}, nil
}

func (m *mockFileUtilityService) BackupFile(_ context.Context, req models.BackupFileRequest) (*models.BackupFileResponse, *models.ErrorDetail) {
	if m.BackupFileFunc != nil {
		return m.BackupFileFunc(req)
	}
	return &models.BackupFileResponse{}, nil
}

func (m *mockFileUtilityService) CopyFile(_ context.Context, req models.CopyFileRequest) (*models.CopyFileResponse, *models.ErrorDetail) {
	if m.CopyFileFunc != nil {
		return m.CopyFileFunc(req)
	}
	return &models.CopyFileResponse{}, nil
}

func (m *mockFileUtilityService) RenameFile(_ context.Context, req models.RenameFileRequest) (*models.RenameFileResponse, *models.ErrorDetail) {
	if m.RenameFileFunc != nil {
		return m.RenameFileFunc(req)
	}
	return &models.RenameFileResponse{}, nil
}

func (m *mockFileUtilityService) RemoveFile(_ context.Context, req models.RemoveFileRequest) (*models.RemoveFileResponse, *models.ErrorDetail) {
	if m.RemoveFileFunc != nil {
		return m.RemoveFileFunc(req)
	}
	return &models.RemoveFileResponse{}, nil
}

func (m *mockFileUtilityService) Exists(_ context.Context, req models.ExistsRequest) (*models.ExistsResponse, *models.ErrorDetail) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(req)
	}
	return &models.ExistsResponse{}, nil
}

func (m *mockFileUtilityService) HashData(_ context.Context, req models.HashDataRequest) (*models.HashDataResponse, *models.ErrorDetail) {
	if m.HashDataFunc != nil {
		return m.HashDataFunc(req)
	}
	return &models.HashDataResponse{}, nil
}

func (m *mockFileUtilityService) WorkingDirectory() string { return "/work" }
